package completion

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("completion API key is not configured")
	ErrUnauthorized      = errors.New("completion API rejected the credentials")
	ErrRateLimited       = errors.New("completion API rate limit exceeded")
	ErrEmptyResponse     = errors.New("completion API returned no choices")
	ErrMissingPrompt     = errors.New("prompt is required")
	ErrUnknownKind       = errors.New("unknown completion type")
)

// APIError is any other non-success answer from the upstream API.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}
