package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a Config violates its invariants.
var ErrInvalidConfig = errors.New("invalid negotiation config")

// ErrInvalidOffer is returned when a price is rejected at the input boundary.
var ErrInvalidOffer = errors.New("invalid offer")

// ErrGuardViolation signals that guard evaluation matched zero or several outcomes.
// It is an internal contract fault, never a user error.
var ErrGuardViolation = errors.New("guard evaluation is not exclusive")

// ErrInvalidTransition is returned when an event is not allowed in the current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnhandledSignal is returned when a signal name is not known.
var ErrUnhandledSignal = errors.New("unhandled signal")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// ErrTranscriptNotFound is returned when an archive has no transcript for an ID.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// ConfigError aggregates every validation failure of a Config.
type ConfigError struct {
	Errors []error
}

func (e *ConfigError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Errors[0])
	}
	msg := fmt.Sprintf("%s: %d validation errors:\n", ErrInvalidConfig, len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ValidationErrors returns all field errors if err wraps a ConfigError.
func ValidationErrors(err error) []error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Errors
	}
	return nil
}
