package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger. Development gets the human readable
// console writer, everything else writes JSON lines.
func New(env string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

