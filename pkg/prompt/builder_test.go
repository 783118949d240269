package prompt

import (
	"errors"
	"strings"
	"testing"

	"storyspark-be/pkg/inspiration"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		modality    inspiration.Modality
		payload     Payload
		want        string
		attachments int
		wantErr     error
	}{
		{
			name:     "text topics joined in order",
			modality: inspiration.ModalityText,
			payload:  Payload{Topics: []string{"Health", "Technology"}},
			want:     "Generate story ideas based on the following topics: Health, Technology.",
		},
		{
			name:     "text with custom topic",
			modality: inspiration.ModalityText,
			payload:  Payload{Topics: []string{"Science", "Space", "Deep sea mining"}},
			want:     "Generate story ideas based on the following topics: Science, Space, Deep sea mining.",
		},
		{
			name:     "emoji sequence",
			modality: inspiration.ModalityEmoji,
			payload:  Payload{EmojiSequence: "🔥✨🤔"},
			want:     "Generate story ideas inspired by this sequence of emojis: 🔥✨🤔.",
		},
		{
			name:     "images become attachments",
			modality: inspiration.ModalityImage,
			payload: Payload{Images: []inspiration.Image{
				{Data: []byte("a"), MediaType: "image/png"},
				{Data: []byte("b"), MediaType: "image/jpeg"},
			}},
			want:        "Generate story ideas inspired by the following image(s). Analyze the content, mood, and potential narratives within the image(s).",
			attachments: 2,
		},
		{
			name:     "empty text",
			modality: inspiration.ModalityText,
			payload:  Payload{Topics: []string{" "}},
			wantErr:  ErrEmptyPayload,
		},
		{
			name:     "empty emoji",
			modality: inspiration.ModalityEmoji,
			wantErr:  ErrEmptyPayload,
		},
		{
			name:     "no images",
			modality: inspiration.ModalityImage,
			wantErr:  ErrEmptyPayload,
		},
		{
			name:     "unknown modality",
			modality: inspiration.Modality("audio"),
			payload:  Payload{Topics: []string{"x"}},
			wantErr:  ErrUnknownModality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.modality, tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.InstructionText != tt.want {
				t.Errorf("instruction = %q, want %q", got.InstructionText, tt.want)
			}
			if len(got.Attachments) != tt.attachments {
				t.Errorf("attachments = %d, want %d", len(got.Attachments), tt.attachments)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	payload := Payload{Topics: []string{"Elections", "Culture"}}
	first, _ := Build(inspiration.ModalityText, payload)
	second, _ := Build(inspiration.ModalityText, payload)
	if first.InstructionText != second.InstructionText {
		t.Errorf("instructions differ: %q vs %q", first.InstructionText, second.InstructionText)
	}
}

func TestBuildImageKeepsOrderAndTypes(t *testing.T) {
	got, err := Build(inspiration.ModalityImage, Payload{Images: []inspiration.Image{
		{Data: []byte("first"), MediaType: "image/webp"},
		{Data: []byte("second"), MediaType: "image/gif"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Attachments[0].Data) != "first" || got.Attachments[0].MediaType != "image/webp" {
		t.Errorf("first attachment = %+v", got.Attachments[0])
	}
	if string(got.Attachments[1].Data) != "second" || got.Attachments[1].MediaType != "image/gif" {
		t.Errorf("second attachment = %+v", got.Attachments[1])
	}
}

func TestBuildPlan(t *testing.T) {
	got := BuildPlan("Tides of Change", "Coastal towns adapt.")
	for _, want := range []string{
		`Title: "Tides of Change"`,
		`Summary: "Coastal towns adapt."`,
		"### Story Outline",
		"### Potential Sources",
		"**Primary Sources:**",
		"**Secondary Sources:**",
		"### Key Questions to Answer",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plan prompt missing %q", want)
		}
	}
}
