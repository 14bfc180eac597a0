package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New constructs a zerolog.Logger for the service. Development builds log at
// debug level through the console writer.
func New(development bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, development)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, development bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}
