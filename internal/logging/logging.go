// Package logging provides a leveled, structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.FatalLevel
	}
}

// ParseLevel parses a log level string. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled logger with key/value fields.
// A nil *Logger discards everything.
type Logger struct {
	l *log.Logger
}

// New creates a logger writing to stderr.
func New(level Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level Level) *Logger {
	return &Logger{l: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level.charm(),
	})}
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	if l == nil {
		return
	}
	l.l.SetOutput(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.l.SetLevel(level.charm())
}

// With returns a child logger that adds keyvals to every record.
func (l *Logger) With(keyvals ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{l: l.l.With(keyvals...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if l != nil {
		l.l.Debug(msg, keyvals...)
	}
}

// Info logs an info message.
func (l *Logger) Info(msg string, keyvals ...any) {
	if l != nil {
		l.l.Info(msg, keyvals...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, keyvals ...any) {
	if l != nil {
		l.l.Warn(msg, keyvals...)
	}
}

// Error logs an error message.
func (l *Logger) Error(msg string, keyvals ...any) {
	if l != nil {
		l.l.Error(msg, keyvals...)
	}
}

// Since is a convenience field for elapsed time since start.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Microsecond)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return NewWithWriter(io.Discard, LevelError+1)
}
