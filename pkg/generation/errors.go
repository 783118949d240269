package generation

import (
	"errors"
	"fmt"

	"storyspark-be/pkg/llm"
)

var (
	ErrIdeasInFlight = errors.New("story ideas are already being generated")
	ErrPlanInFlight  = errors.New("a research plan is already being generated")
)

// Kind discriminates model client failures.
type Kind string

const (
	// KindTransport covers network failures and non-2xx answers.
	KindTransport Kind = "transport"
	// KindSchema means the answer did not have the requested shape.
	KindSchema Kind = "schema"
	// KindEmpty means the model answered with nothing usable.
	KindEmpty Kind = "empty"
)

// ModelError is returned by a ModelClient. Its text is technical and is only
// logged; users see the fixed failure messages instead.
type ModelError struct {
	Kind Kind
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s error: %v", e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func newModelError(kind Kind, err error) *ModelError {
	return &ModelError{Kind: kind, Err: err}
}

// ClassOf tells whether a retry of the failed call may succeed: "transient"
// for network failures, rate limits and 5xx answers, "fatal" for rejected
// requests, "" when the provider did not classify the error.
func ClassOf(err error) string {
	switch {
	case llm.IsTransient(err):
		return "transient"
	case llm.IsFatal(err):
		return "fatal"
	default:
		return ""
	}
}

// KindOf returns the kind of a model error, or "" for any other error.
func KindOf(err error) Kind {
	var merr *ModelError
	if errors.As(err, &merr) {
		return merr.Kind
	}
	return ""
}
