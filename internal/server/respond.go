package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"maintenance-dashboard/internal/completion"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := errorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, status, body)
}

// completionStatus maps completion failures to a status and a client-facing message.
// fallback is used for errors that carry no completion meaning.
func completionStatus(err error, fallback int) (int, string) {
	var apiErr *completion.APIError
	switch {
	case errors.Is(err, completion.ErrMissingPrompt):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, completion.ErrUnknownKind):
		return http.StatusBadRequest, "Invalid type"
	case errors.Is(err, completion.ErrMissingCredential):
		return http.StatusInternalServerError, "Completion API key is not configured"
	case errors.Is(err, completion.ErrUnauthorized):
		return http.StatusBadGateway, "Completion API rejected the configured key"
	case errors.Is(err, completion.ErrRateLimited):
		return http.StatusTooManyRequests, "Completion API rate limit exceeded. Please try again later."
	case errors.As(err, &apiErr), errors.Is(err, completion.ErrEmptyResponse):
		return http.StatusBadGateway, "Completion API request failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return fallback, "Failed to process request"
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
