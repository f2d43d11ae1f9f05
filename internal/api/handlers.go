package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-planets/internal/astro"
	"github.com/litescript/ls-planets/internal/catalog"
	"github.com/litescript/ls-planets/internal/ephem"
	"github.com/litescript/ls-planets/internal/query"
)

// APIError is the JSON error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// badRequest reports a malformed query string value.
func badRequest(field, raw, reason string) error {
	return &astro.InvalidObserverError{Field: field, Value: raw, Reason: reason}
}

// parseParams reads the query string into query.Params.
func parseParams(v url.Values) (query.Params, error) {
	var p query.Params
	var err error
	if p.Latitude, err = floatParam(v, "lat", "latitude"); err != nil {
		return p, err
	}
	if p.Longitude, err = floatParam(v, "lon", "longitude"); err != nil {
		return p, err
	}
	if p.Elevation, err = floatParam(v, "elevation", "elevation"); err != nil {
		return p, err
	}
	p.Instant = v.Get("time")

	if raw := v.Get("bodies"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				p.Bodies = append(p.Bodies, id)
			}
		}
	}
	if raw := v.Get("showCoords"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return p, badRequest("showCoords", raw, "not a boolean")
		}
		p.ShowCoords = b
	}
	if raw := v.Get("aboveHorizon"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return p, badRequest("aboveHorizon", raw, "not a boolean")
		}
		p.AboveHorizon = &b
	}
	return p, nil
}

func floatParam(v url.Values, key, field string) (*float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest(field, raw, "not a number")
	}
	return &f, nil
}

func durationParam(v url.Values, key string) (time.Duration, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, badRequest(key, raw, "not a positive duration")
	}
	return d, nil
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Query(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.NewView(res))
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Body(r.Context(), p, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.NewBodyView(o, p.ShowCoords))
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := parseParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	span, err := durationParam(q, "span")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	step, err := durationParam(q, "step")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	win, err := s.svc.Window(r.Context(), p, r.PathValue("id"), span, step)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, win)
}

func (s *Server) handleTwilight(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tw, err := s.svc.Twilight(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tw)
}

// writeError maps err onto a status and writes the JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := toAPIError(err)
	if e.Status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "err", err)
	}
	writeJSON(w, e.Status, e)
}

func toAPIError(err error) *APIError {
	switch {
	case errors.Is(err, astro.ErrInvalidObserver):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_parameter", Message: err.Error()}
	case errors.Is(err, catalog.ErrUnknownBody):
		return &APIError{Status: http.StatusNotFound, Code: "unknown_body", Message: err.Error()}
	case errors.Is(err, astro.ErrInsufficientSamples):
		return &APIError{Status: http.StatusBadRequest, Code: "invalid_parameter", Message: err.Error()}
	case errors.Is(err, ephem.ErrProviderUnavailable):
		return &APIError{Status: http.StatusServiceUnavailable, Code: "provider_unavailable", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Status: http.StatusGatewayTimeout, Code: "timeout", Message: err.Error()}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
	}
}
