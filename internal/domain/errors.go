package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for a blank utterance. No turn is started.
	ErrEmptyInput = errors.New("empty input")

	// ErrTurnInFlight is returned when a turn is requested while another
	// one is still waiting for the provider.
	ErrTurnInFlight = errors.New("a turn is already awaiting generation")

	// ErrTaskNotFound is returned for a task index outside the task list.
	ErrTaskNotFound = errors.New("task not found")
)

// ConfigurationError reports a missing or invalid provider credential.
// It blocks every turn until resolved.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError reports a failed generation call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("error generating response (%s): %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err unless it is already a *ProviderError.
func NewProviderError(provider string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// ErrNotConfigured is the ConfigurationError used when no credential was supplied.
var ErrNotConfigured = &ConfigurationError{Reason: "GEMINI_API_KEY is not set"}
