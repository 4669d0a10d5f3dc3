package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a fetch needs a credential and none was given.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrMalformedResponse is returned when a model list cannot be parsed.
	ErrMalformedResponse = errors.New("malformed model list response")

	// ErrDuplicateProvider is returned when two sources share a name.
	ErrDuplicateProvider = errors.New("provider already registered")
)

const maxErrorBody = 256

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func newStatusError(provider string, code int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Provider: provider, StatusCode: code, Body: string(body)}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s model list returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
