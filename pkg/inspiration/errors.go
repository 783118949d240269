package inspiration

import "errors"

// ValidationError reports a selection cardinality or input violation. The
// message is meant to be shown next to the offending control.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AssetReadError aborts an image batch because one file could not be
// accepted or read.
type AssetReadError struct {
	Name    string
	Message string
	Err     error
}

func (e *AssetReadError) Error() string {
	return e.Message
}

func (e *AssetReadError) Unwrap() error {
	return e.Err
}

var (
	ErrFreeformDisabled = &ValidationError{
		Field:   "freeform",
		Message: "Custom entry is disabled while the selection is full.",
	}
	ErrNoOptionSelection = &ValidationError{
		Field:   "modality",
		Message: "The image modality has no option selection.",
	}

	ErrNotAnImage = errors.New("not an image")
	ErrEmptyFile  = errors.New("empty file")
	ErrTooLarge   = errors.New("file too large")
)

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
