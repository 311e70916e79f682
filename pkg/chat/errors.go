package chat

import (
	"errors"
	"fmt"
)

// ErrNoChoices is returned when a completion carries zero choices.
var ErrNoChoices = errors.New("empty completion choices")

// APIError is a non-success HTTP response from the completion endpoint.
type APIError struct {
	StatusCode int
	// Message is error.message from an Azure error envelope, if present.
	Message string
	// Body is the raw response body.
	Body string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a network-level failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError reports a response body that could not be used.
type ResponseError struct {
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("invalid completion response: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

