package client

import (
	"errors"
	"fmt"

	"github.com/mockhub/mockhub-console/models"
)

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	Message string
	Status  int
	Body    []byte
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Detail decodes the error body.
func (e *HTTPError) Detail() models.ErrorResponse {
	return models.ParseErrorResponse(e.Body)
}

// TransportError means no response was received: the connection failed,
// timed out or was cancelled.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("no response received: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DetailMessage returns the server provided message of err, or fallback
// when err carries none.
func DetailMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Detail().Summary(); msg != "" {
			return msg
		}
	}
	return fallback
}
