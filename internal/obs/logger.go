// Package obs wraps github.com/rs/zerolog behind a small level-gated facade
// so the rest of wsched never imports zerolog directly. Only lifecycle and
// diagnostic events go through here (worker start/park/exit, queue capacity
// rounding, scheduler start/stop/destroy) — never the push/pop/steal hot
// path.
package obs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's levels under names that read naturally at call
// sites that don't otherwise know about zerolog.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	// DisabledLevel silences the logger entirely.
	DisabledLevel
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Logger is a leveled, structured logger. The zero value is not usable;
// construct with New or Nop.
type Logger struct {
	z zerolog.Logger
}

// New creates a Logger writing JSON lines to w at the given level.
func New(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return Logger{z: zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything, at negligible cost per
// call site — used as the default so the scheduler never requires a caller
// to configure logging to run correctly.
func Nop() Logger {
	return Logger{z: zerolog.Nop()}
}

// With returns a child logger with an additional structured field attached
// to every subsequent entry (e.g. worker index, deque id).
func (l Logger) With(key string, value any) Logger {
	return Logger{z: l.z.With().Interface(key, value).Logger()}
}

func (l Logger) Debug(msg string) { l.z.Debug().Msg(msg) }
func (l Logger) Info(msg string)  { l.z.Info().Msg(msg) }
func (l Logger) Warn(msg string)  { l.z.Warn().Msg(msg) }
func (l Logger) Error(msg string) { l.z.Error().Msg(msg) }
