// Package logging builds the diagnostic logger. Diagnostics never go to
// stdout, which carries the report.
package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ParseLevel validates a level name. The empty string means warn.
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "":
		return zerolog.WarnLevel, nil
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return zerolog.ParseLevel(level)
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

// New returns a console logger writing to w at the named level.
// Callers validate the level with ParseLevel first; anything it rejects
// logs at warn.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
