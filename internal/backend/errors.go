package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response that decoded but did not have the expected shape.
var ErrMalformedResponse = errors.New("malformed backend response")

// TransportError is a failure to reach the backend or to get a 2xx answer from it.
type TransportError struct {
	Method     string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned HTTP %d: %v", e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the call could succeed.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// RejectedError is a business-logic rejection carried in the err arm of a result.
type RejectedError struct {
	Method  string
	Code    string // variant tag when the backend returns a variant error
	Message string
	Raw     json.RawMessage
}

func (e *RejectedError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s rejected: %s: %s", e.Method, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("%s rejected: %s", e.Method, e.Code)
	default:
		return fmt.Sprintf("%s rejected: %s", e.Method, e.Message)
	}
}

// Outcome classifies err for logs and metrics.
func Outcome(err error) string {
	var rejected *RejectedError
	var transport *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &transport):
		return "transport"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
