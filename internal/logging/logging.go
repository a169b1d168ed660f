// Package logging configures the zerolog logger shared by the billaudit
// commands. All pipeline, audit and store events go to stderr so the report
// printed on stdout stays clean.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger for the requested format: "text" renders
// a human-readable console stream for interactive runs; any other value
// emits structured JSON for log collection.
func Setup(format string) zerolog.Logger {
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
