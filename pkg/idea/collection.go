package idea

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrIndexOutOfRange = errors.New("idea index out of range")
	ErrPlanAlreadySet  = errors.New("research plan already set")
)

// StoryIdea is one generated idea. ResearchPlan stays nil until a plan has
// been generated for it.
type StoryIdea struct {
	Title        string  `json:"title"`
	Summary      string  `json:"summary"`
	ResearchPlan *string `json:"researchPlan,omitempty"`
}

// HasPlan reports whether the idea has been enriched.
func (s StoryIdea) HasPlan() bool {
	return s.ResearchPlan != nil
}

// SameIdea compares identity fields, ignoring the plan.
func (s StoryIdea) SameIdea(other StoryIdea) bool {
	return s.Title == other.Title && s.Summary == other.Summary
}

// Patch carries the fields to overwrite at one position.
type Patch struct {
	ResearchPlan *string
}

// Collection is an ordered, immutable list of ideas. Every mutation returns a
// new Collection; positions other than the patched one keep their values.
type Collection struct {
	items []StoryIdea
}

func NewCollection(ideas []StoryIdea) Collection {
	return Collection{items: slices.Clone(ideas)}
}

// ReplaceAll discards the previous ideas.
func (c Collection) ReplaceAll(ideas []StoryIdea) Collection {
	return NewCollection(ideas)
}

// PatchAt returns a collection differing from c only at index.
func (c Collection) PatchAt(index int, patch Patch) (Collection, error) {
	if index < 0 || index >= len(c.items) {
		return c, fmt.Errorf("patch %d of %d: %w", index, len(c.items), ErrIndexOutOfRange)
	}
	if patch.ResearchPlan != nil && c.items[index].HasPlan() {
		return c, fmt.Errorf("patch %d: %w", index, ErrPlanAlreadySet)
	}

	next := slices.Clone(c.items)
	if patch.ResearchPlan != nil {
		plan := *patch.ResearchPlan
		next[index].ResearchPlan = &plan
	}
	return Collection{items: next}, nil
}

// Get returns a copy of the ideas in order.
func (c Collection) Get() []StoryIdea {
	return slices.Clone(c.items)
}

// At returns the idea at index.
func (c Collection) At(index int) (StoryIdea, bool) {
	if index < 0 || index >= len(c.items) {
		return StoryIdea{}, false
	}
	return c.items[index], true
}

func (c Collection) Len() int { return len(c.items) }
