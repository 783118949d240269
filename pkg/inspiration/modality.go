package inspiration

import (
	"fmt"
	"strings"
)

// Modality is one of the mutually exclusive inspiration input modes.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityEmoji Modality = "emoji"
	ModalityImage Modality = "image"
)

// ParseModality accepts the lower-case wire name, case-insensitively.
func ParseModality(raw string) (Modality, error) {
	switch Modality(strings.ToLower(strings.TrimSpace(raw))) {
	case ModalityText:
		return ModalityText, nil
	case ModalityEmoji:
		return ModalityEmoji, nil
	case ModalityImage:
		return ModalityImage, nil
	}
	return "", &ValidationError{Field: "modality", Message: fmt.Sprintf("unknown modality %q", raw)}
}

func (m Modality) String() string {
	return string(m)
}
