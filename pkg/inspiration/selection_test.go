package inspiration

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// tenOf offers exactly the given items, which must number OfferedOptionCount.
func tenOf(t *testing.T, modality Modality, items ...string) *Selection {
	t.Helper()
	require.Len(t, items, OfferedOptionCount)
	s := NewSelection(modality, items, seeded())
	s.EnsureOffered()
	require.ElementsMatch(t, items, s.Offered())
	return s
}

var sampleTopics = []string{
	"Health", "Technology", "Elections", "Weather", "Buses",
	"Cuisine", "Trauma", "Gender", "Children", "Oceanography",
}

var sampleEmojis = []string{
	"🔥", "✨", "🤔", "🤯", "🫠", "😂", "💡", "🚀", "🌊", "👍",
}

func TestRefreshOfferedPrefersNovelCandidates(t *testing.T) {
	for _, s := range []*Selection{NewTextSelection(seeded()), NewEmojiSelection(seeded())} {
		t.Run(s.Modality().String(), func(t *testing.T) {
			s.RefreshOffered()
			previous := s.Offered()
			require.Len(t, previous, OfferedOptionCount)

			for range 5 {
				s.RefreshOffered()
				current := s.Offered()
				assert.Len(t, current, OfferedOptionCount)
				for _, item := range current {
					assert.NotContains(t, previous, item)
				}
				previous = current
			}
		})
	}
}

func TestRefreshOfferedFallsBackToWholeUniverse(t *testing.T) {
	universe := append(slices.Clone(sampleTopics), "Politics", "Conflict", "Old Age", "Remote Work", "Health Care")
	s := NewSelection(ModalityText, universe, seeded())

	for range 4 {
		s.RefreshOffered()
		offered := s.Offered()
		assert.Len(t, offered, OfferedOptionCount)
		for _, item := range offered {
			assert.Contains(t, universe, item)
		}
	}
}

func TestEnsureOfferedOnlyRefreshesOnce(t *testing.T) {
	s := NewTextSelection(seeded())
	s.EnsureOffered()
	first := s.Offered()
	s.EnsureOffered()
	assert.Equal(t, first, s.Offered())
}

func TestToggle(t *testing.T) {
	t.Run("removal always allowed", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		for _, topic := range sampleTopics[:3] {
			changed, err := s.Toggle(topic)
			require.NoError(t, err)
			require.True(t, changed)
		}
		require.True(t, s.Full())

		changed, err := s.Toggle("Technology")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []string{"Health", "Elections"}, s.Chosen())
	})

	t.Run("addition while full is a no-op", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		_, _ = s.Toggle("Health")
		_, _ = s.Toggle("Technology")
		_, err := s.SetFreeform("Housing")
		require.NoError(t, err)
		require.Equal(t, MaxOptionSelections, s.EffectiveCount())

		changed, err := s.Toggle("Weather")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, MaxOptionSelections, s.EffectiveCount())
		assert.NotContains(t, s.Chosen(), "Weather")
	})

	t.Run("count never exceeds max through toggling", func(t *testing.T) {
		s := tenOf(t, ModalityEmoji, sampleEmojis...)
		for _, e := range sampleEmojis {
			_, err := s.Toggle(e)
			require.NoError(t, err)
			assert.LessOrEqual(t, s.EffectiveCount(), MaxOptionSelections)
		}
		assert.Equal(t, sampleEmojis[:3], s.Chosen())
	})

	t.Run("items that are not offered are rejected", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		changed, err := s.Toggle("Astrology")
		assert.False(t, changed)
		assert.True(t, IsValidation(err))
	})
}

func TestTextFreeform(t *testing.T) {
	t.Run("counts as exactly one unit", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		_, err := s.SetFreeform("  the future of public libraries  ")
		require.NoError(t, err)
		assert.Equal(t, 1, s.EffectiveCount())

		_, err = s.SetFreeform("   ")
		require.NoError(t, err)
		assert.Equal(t, 0, s.EffectiveCount())
	})

	t.Run("cannot be started once full", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		for _, topic := range sampleTopics[:3] {
			_, _ = s.Toggle(topic)
		}
		stored, err := s.SetFreeform("Housing")
		assert.ErrorIs(t, err, ErrFreeformDisabled)
		assert.Empty(t, stored)
		assert.Empty(t, s.Freeform())
	})

	t.Run("occupied entry can be replaced while full", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		_, _ = s.Toggle("Health")
		_, _ = s.Toggle("Technology")
		_, err := s.SetFreeform("Housing")
		require.NoError(t, err)

		stored, err := s.SetFreeform("Rent control")
		require.NoError(t, err)
		assert.Equal(t, "Rent control", stored)
		assert.Equal(t, MaxOptionSelections, s.EffectiveCount())
	})

	t.Run("capped at the length ceiling", func(t *testing.T) {
		s := tenOf(t, ModalityText, sampleTopics...)
		stored, err := s.SetFreeform(strings.Repeat("é", 80))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", MaxCustomTopicLength), stored)
	})
}

func TestEmojiFreeform(t *testing.T) {
	t.Run("truncated to remaining capacity", func(t *testing.T) {
		s := tenOf(t, ModalityEmoji, sampleEmojis...)
		_, _ = s.Toggle("🔥")
		_, _ = s.Toggle("✨")

		stored, err := s.SetFreeform("🤔🤯🫠")
		require.NoError(t, err)
		assert.Equal(t, "🤔", stored)
		assert.Equal(t, 3, s.EffectiveCount())
		assert.Equal(t, "🔥✨🤔", s.Sequence())
	})

	t.Run("multi-codepoint symbols count once", func(t *testing.T) {
		s := tenOf(t, ModalityEmoji, sampleEmojis...)
		_, _ = s.Toggle("🔥")

		stored, err := s.SetFreeform("🇯🇵👍🏽👩‍👩‍👧🤔")
		require.NoError(t, err)
		assert.Equal(t, "🇯🇵👍🏽", stored)
		assert.Equal(t, 3, s.EffectiveCount())
	})

	t.Run("within capacity is stored untouched", func(t *testing.T) {
		s := tenOf(t, ModalityEmoji, sampleEmojis...)
		stored, err := s.SetFreeform(" 🤔🤯 ")
		require.NoError(t, err)
		assert.Equal(t, " 🤔🤯 ", stored)
		assert.Equal(t, 2, s.EffectiveCount())
		assert.True(t, s.Valid())
	})

	t.Run("no capacity stores nothing", func(t *testing.T) {
		s := tenOf(t, ModalityEmoji, sampleEmojis...)
		for _, e := range sampleEmojis[:3] {
			_, _ = s.Toggle(e)
		}
		stored, err := s.SetFreeform("🤔")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestValidity(t *testing.T) {
	s := tenOf(t, ModalityText, sampleTopics...)
	assert.False(t, s.Valid())

	_, _ = s.Toggle("Health")
	assert.False(t, s.Valid())

	_, _ = s.Toggle("Technology")
	assert.True(t, s.Valid())
	assert.Equal(t, 2, s.EffectiveCount())
	assert.Equal(t, []string{"Health", "Technology"}, s.Topics())
}

func TestTruncateSymbols(t *testing.T) {
	tests := []struct {
		value string
		n     int
		want  string
	}{
		{"abc", 2, "ab"},
		{"abc", 5, "abc"},
		{"❤️✨", 1, "❤️"},
		{"🏳️‍🌈x", 1, "🏳️‍🌈"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateSymbols(tt.value, tt.n); got != tt.want {
			t.Errorf("TruncateSymbols(%q, %d) = %q, want %q", tt.value, tt.n, got, tt.want)
		}
	}
}

func TestCatalogs(t *testing.T) {
	assert.Len(t, Topics, 30)
	assert.Len(t, Emojis, 40)
}
