package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger writing to w (stdout when nil).
// APP_ENV=dev (or development, cli) uses a human-friendly console writer.
func NewLogger(env string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	switch env {
	case "dev", "development", "cli":
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Level maps the CLI verbosity flag onto a zerolog level.
func Level(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}
