package inspiration

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	MinOptionSelections  = 2
	MaxOptionSelections  = 3
	OfferedOptionCount   = 10
	MaxCustomTopicLength = 50
)

// Selection is the quick-pick state of the text or emoji modality. It is not
// safe for concurrent use; the owning session serializes access.
type Selection struct {
	modality Modality
	universe []string
	offered  []string
	chosen   []string
	freeform string
	rng      *rand.Rand
}

// NewTextSelection returns an empty topic selection over Topics.
func NewTextSelection(rng *rand.Rand) *Selection {
	return NewSelection(ModalityText, Topics, rng)
}

// NewEmojiSelection returns an empty emoji selection over Emojis.
func NewEmojiSelection(rng *rand.Rand) *Selection {
	return NewSelection(ModalityEmoji, Emojis, rng)
}

// NewSelection builds a selection for a text-like modality. A nil rng falls
// back to a randomly seeded source.
func NewSelection(modality Modality, universe []string, rng *rand.Rand) *Selection {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selection{
		modality: modality,
		universe: slices.Clone(universe),
		rng:      rng,
	}
}

func (s *Selection) Modality() Modality { return s.modality }

func (s *Selection) Offered() []string { return slices.Clone(s.offered) }

func (s *Selection) Chosen() []string { return slices.Clone(s.chosen) }

func (s *Selection) Freeform() string { return s.freeform }

// EffectiveCount is the number of inspiration units currently selected.
func (s *Selection) EffectiveCount() int {
	return len(s.chosen) + s.freeformContribution(s.freeform)
}

// Full reports whether no further additions are allowed.
func (s *Selection) Full() bool {
	return s.EffectiveCount() >= MaxOptionSelections
}

// Valid gates the generate action.
func (s *Selection) Valid() bool {
	n := s.EffectiveCount()
	return n >= MinOptionSelections && n <= MaxOptionSelections
}

func (s *Selection) freeformContribution(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if s.modality == ModalityEmoji {
		return uniseg.GraphemeClusterCount(trimmed)
	}
	return 1
}

// Toggle removes a chosen item or adds an offered one. Adding while full is a
// silent no-op; the returned bool reports whether the selection changed.
func (s *Selection) Toggle(item string) (bool, error) {
	if i := slices.Index(s.chosen, item); i >= 0 {
		s.chosen = slices.Delete(s.chosen, i, i+1)
		return true, nil
	}
	if !slices.Contains(s.offered, item) {
		return false, &ValidationError{
			Field:   "item",
			Message: fmt.Sprintf("%q is not one of the offered %s options", item, s.modality),
		}
	}
	if s.Full() {
		return false, nil
	}
	s.chosen = append(s.chosen, item)
	return true, nil
}

// SetFreeform stores the user-typed supplement and returns the stored value.
//
// Text entries are capped at MaxCustomTopicLength symbols and cannot be
// started once the selection is full. Emoji entries are truncated to the
// remaining capacity instead of being rejected.
func (s *Selection) SetFreeform(value string) (string, error) {
	if s.modality == ModalityEmoji {
		trimmed := strings.TrimSpace(value)
		available := max(MaxOptionSelections-len(s.chosen), 0)
		if uniseg.GraphemeClusterCount(trimmed) > available {
			value = TruncateSymbols(trimmed, available)
		}
		s.freeform = value
		return s.freeform, nil
	}

	value = TruncateSymbols(value, MaxCustomTopicLength)
	if strings.TrimSpace(s.freeform) == "" && strings.TrimSpace(value) != "" && s.Full() {
		return s.freeform, ErrFreeformDisabled
	}
	s.freeform = value
	return s.freeform, nil
}

// RefreshOffered replaces the offered options with a random sample, taken
// from candidates not currently offered when enough of them exist.
func (s *Selection) RefreshOffered() {
	novel := make([]string, 0, len(s.universe))
	for _, candidate := range s.universe {
		if !slices.Contains(s.offered, candidate) {
			novel = append(novel, candidate)
		}
	}
	pool := novel
	if len(novel) < OfferedOptionCount {
		pool = s.universe
	}
	s.offered = s.sample(pool, OfferedOptionCount)
}

// EnsureOffered runs the first refresh for a freshly activated modality.
func (s *Selection) EnsureOffered() {
	if len(s.offered) == 0 {
		s.RefreshOffered()
	}
}

func (s *Selection) sample(pool []string, n int) []string {
	picked := slices.Clone(pool)
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:min(n, len(picked))]
}

// Topics returns the chosen topics followed by the trimmed custom topic.
func (s *Selection) Topics() []string {
	topics := slices.Clone(s.chosen)
	if custom := strings.TrimSpace(s.freeform); custom != "" {
		topics = append(topics, custom)
	}
	return topics
}

// Sequence concatenates the chosen emojis and then the custom symbols.
func (s *Selection) Sequence() string {
	return strings.Join(s.chosen, "") + strings.TrimSpace(s.freeform)
}

// TruncateSymbols keeps the first n grapheme clusters of value.
func TruncateSymbols(value string, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(value)
	for count := 0; count < n && g.Next(); count++ {
		b.WriteString(g.Str())
	}
	return b.String()
}
