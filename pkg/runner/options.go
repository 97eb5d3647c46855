package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithIdleTimeout rejects the negotiation with a timeout event when no input
// arrives within d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.IdleTimeout = d
	}
}
