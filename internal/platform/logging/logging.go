// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// New returns a timestamped zerolog logger writing to w. In development the
// output is human readable; otherwise it is JSON, one event per line.
func New(w io.Writer, env, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
	}
	if level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
