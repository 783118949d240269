package store

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"storyspark-be/pkg/idea"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/prompt"
)

const (
	PhaseIdle            = "IDLE"
	PhaseGeneratingIdeas = "GENERATING_IDEAS"
	PhaseGeneratingPlan  = "GENERATING_PLAN"
	PhaseGeneratingBoth  = "GENERATING_IDEAS_AND_PLAN"
)

// Status tracks in-flight model calls and the last user-facing failure.
type Status struct {
	GeneratingIdeas bool
	PlanTarget      *int
	LastError       string
}

// Phase summarizes the status for clients.
func (s Status) Phase() string {
	switch {
	case s.GeneratingIdeas && s.PlanTarget != nil:
		return PhaseGeneratingBoth
	case s.GeneratingIdeas:
		return PhaseGeneratingIdeas
	case s.PlanTarget != nil:
		return PhaseGeneratingPlan
	default:
		return PhaseIdle
	}
}

// Session is the full state of one user's workspace. Callers hold the embedded
// mutex for every read or mutation; model calls happen outside it.
type Session struct {
	sync.Mutex

	ID        string
	CreatedAt time.Time

	// THE INPUTS (one selection state per modality, only Active is used)
	Active inspiration.Modality
	Text   *inspiration.Selection
	Emoji  *inspiration.Selection
	Images *inspiration.ImageSelection

	// THE OUTPUTS
	Ideas  idea.Collection
	Status Status
}

// NewSession creates a session with the text modality active. previews and
// rng may be nil.
func NewSession(id string, previews inspiration.PreviewStore, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Text:      inspiration.NewTextSelection(rng),
		Emoji:     inspiration.NewEmojiSelection(rng),
		Images:    inspiration.NewImageSelection(previews),
	}
	_ = s.Activate(inspiration.ModalityText)
	return s
}

// Activate switches the active modality. Selections of other modalities are
// kept; a quick-pick modality gets its first batch of offered options.
func (s *Session) Activate(modality inspiration.Modality) error {
	switch modality {
	case inspiration.ModalityText:
		s.Text.EnsureOffered()
	case inspiration.ModalityEmoji:
		s.Emoji.EnsureOffered()
	case inspiration.ModalityImage:
	default:
		return &inspiration.ValidationError{Field: "modality", Message: fmt.Sprintf("unknown modality %q", modality)}
	}
	s.Active = modality
	return nil
}

// ActiveSelection returns the quick-pick state of the active modality.
func (s *Session) ActiveSelection() (*inspiration.Selection, error) {
	switch s.Active {
	case inspiration.ModalityText:
		return s.Text, nil
	case inspiration.ModalityEmoji:
		return s.Emoji, nil
	}
	return nil, inspiration.ErrNoOptionSelection
}

// ValidActive reports whether the active modality satisfies its cardinality.
func (s *Session) ValidActive() bool {
	if s.Active == inspiration.ModalityImage {
		return s.Images.Valid()
	}
	sel, err := s.ActiveSelection()
	return err == nil && sel.Valid()
}

// CanGenerate gates the idea generation action.
func (s *Session) CanGenerate() bool {
	return s.ValidActive() && !s.Status.GeneratingIdeas
}

// Payload normalizes the active selection for the prompt builder.
func (s *Session) Payload() prompt.Payload {
	switch s.Active {
	case inspiration.ModalityText:
		return prompt.Payload{Topics: s.Text.Topics()}
	case inspiration.ModalityEmoji:
		return prompt.Payload{EmojiSequence: s.Emoji.Sequence()}
	case inspiration.ModalityImage:
		return prompt.Payload{Images: s.Images.Images()}
	}
	return prompt.Payload{}
}

// Release frees resources held outside the session (image previews).
func (s *Session) Release() {
	s.Images.ReleaseAll()
}

// ErrSessionNotFound is returned when a session is unknown or has expired.
var ErrSessionNotFound = errors.New("session not found or expired")
