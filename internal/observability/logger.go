package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON in production, text elsewhere.
// Every record carries the emitting service's name so the api and reminder
// processes are distinguishable in shared log streams.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env, service)
}

func newLogger(w io.Writer, env, service string) *slog.Logger {
	var handler slog.Handler
	if env == "prod" || env == "production" {
		handler = slog.NewJSONHandler(w, nil)
	} else {
		handler = slog.NewTextHandler(w, nil)
	}
	return slog.New(handler).With("service", service)
}
