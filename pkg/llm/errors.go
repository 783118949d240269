package llm

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// maxErrorBody caps how much of a provider's error body is quoted.
const maxErrorBody = 200

// TransientError represents a temporary error that may succeed on a later,
// user-triggered attempt (network failure, rate limiting, 5xx).
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error (auth, bad request, unknown status).
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// ClassifyHTTPError determines if an HTTP error is transient or fatal.
func ClassifyHTTPError(provider string, statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		bodyStr = string(body[:cut]) + "..."
	}

	err := fmt.Errorf("%s error: status %d, body: %s", provider, statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
