// Package catalog is the static registry of supported solar-system bodies.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// Category is the closed set of body kinds.
type Category int

const (
	CategoryStar Category = iota
	CategoryPlanet
	CategoryDwarfPlanet
	CategoryMoon
)

func (c Category) String() string {
	switch c {
	case CategoryStar:
		return "star"
	case CategoryPlanet:
		return "planet"
	case CategoryDwarfPlanet:
		return "dwarf_planet"
	case CategoryMoon:
		return "moon"
	default:
		return "unknown"
	}
}

// MarshalText renders the category name in JSON.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name.
func (c *Category) UnmarshalText(b []byte) error {
	for cand := CategoryStar; cand <= CategoryMoon; cand++ {
		if cand.String() == string(b) {
			*c = cand
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", b)
}

// MagnitudeModel holds the parameters of
//
//	V = H + 5 log10(r Δ) + c1 i + c2 i² + c3 i³ + c4 i⁴
//
// with r and Δ the heliocentric and observer distances in AU and i the
// phase angle in degrees. Nominal is used when geometry is unavailable.
type MagnitudeModel struct {
	H          float64
	C1, C2, C3 float64
	C4         float64
	Nominal    float64
}

// Magnitude evaluates the model. The Sun ignores r and the phase terms.
func (m MagnitudeModel) Magnitude(cat Category, rAU, deltaAU, phaseDeg float64) float64 {
	if cat == CategoryStar {
		if deltaAU <= 0 {
			return m.Nominal
		}
		return m.H + 5*math.Log10(deltaAU)
	}
	if rAU <= 0 || deltaAU <= 0 {
		return m.Nominal
	}
	i := phaseDeg
	return m.H + 5*math.Log10(rAU*deltaAU) + m.C1*i + m.C2*i*i + m.C3*i*i*i + m.C4*i*i*i*i
}

// Descriptor describes one body.
type Descriptor struct {
	ID        string
	Name      string
	Category  Category
	Parent    string
	Magnitude MagnitudeModel
	RadiusKm  float64
}

// IsMoon reports whether the body is the Earth's Moon.
func (d Descriptor) IsMoon() bool {
	return d.ID == MoonID
}

// Well-known ids.
const (
	SunID  = "sun"
	MoonID = "moon"
)

// ErrUnknownBody is matched by every *UnknownBodyError.
var ErrUnknownBody = errors.New("unknown body")

// UnknownBodyError reports an id that is not registered.
type UnknownBodyError struct {
	ID string
}

func (e *UnknownBodyError) Error() string {
	return fmt.Sprintf("unknown body %q", e.ID)
}

func (e *UnknownBodyError) Is(target error) bool {
	return target == ErrUnknownBody
}

// Catalog is an immutable, ordered set of descriptors. Safe for concurrent
// reads.
type Catalog struct {
	bodies []Descriptor
	index  map[string]int
}

// New builds a catalog preserving the order of descs. Ids are lowercased;
// duplicates and empty ids are rejected.
func New(descs []Descriptor) (*Catalog, error) {
	c := &Catalog{
		bodies: make([]Descriptor, 0, len(descs)),
		index:  make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		d.ID = normalizeID(d.ID)
		d.Parent = normalizeID(d.Parent)
		if d.ID == "" {
			return nil, errors.New("catalog: empty body id")
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate body id %q", d.ID)
		}
		c.index[d.ID] = len(c.bodies)
		c.bodies = append(c.bodies, d)
	}
	for _, d := range c.bodies {
		if d.Parent == "" {
			continue
		}
		if _, ok := c.index[d.Parent]; !ok {
			return nil, fmt.Errorf("catalog: %s has unregistered parent %q", d.ID, d.Parent)
		}
	}
	return c, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Lookup returns the descriptor for id (case-insensitive).
func (c *Catalog) Lookup(id string) (Descriptor, error) {
	i, ok := c.index[normalizeID(id)]
	if !ok {
		return Descriptor{}, &UnknownBodyError{ID: id}
	}
	return c.bodies[i], nil
}

// Index returns the registration position of id, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.index[normalizeID(id)]; ok {
		return i
	}
	return -1
}

// All returns every descriptor in registration order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.bodies))
	copy(out, c.bodies)
	return out
}

// IDs returns every id in registration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.bodies))
	for i, d := range c.bodies {
		out[i] = d.ID
	}
	return out
}

// Len returns the number of registered bodies.
func (c *Catalog) Len() int {
	return len(c.bodies)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultBodies)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
