package prompt

import (
	"errors"
	"fmt"
	"strings"

	"storyspark-be/internal/constant"
	"storyspark-be/pkg/inspiration"
	"storyspark-be/pkg/llm"
)

var (
	ErrEmptyPayload    = errors.New("nothing selected for the active modality")
	ErrUnknownModality = errors.New("unknown modality")
)

// Payload is the normalized selection of one modality. Only the field that
// matches the modality is read.
type Payload struct {
	Topics        []string
	EmojiSequence string
	Images        []inspiration.Image
}

// Request is what the model client receives for an idea generation.
type Request struct {
	InstructionText string
	Attachments     []llm.Attachment
}

// Build turns a payload into the instruction for its modality. It is pure:
// the same input always yields the same request.
func Build(modality inspiration.Modality, payload Payload) (Request, error) {
	switch modality {
	case inspiration.ModalityText:
		topics := nonBlank(payload.Topics)
		if len(topics) == 0 {
			return Request{}, fmt.Errorf("build %s prompt: %w", modality, ErrEmptyPayload)
		}
		return Request{
			InstructionText: fmt.Sprintf(constant.TextInstructionTemplate, strings.Join(topics, ", ")),
		}, nil

	case inspiration.ModalityEmoji:
		sequence := strings.TrimSpace(payload.EmojiSequence)
		if sequence == "" {
			return Request{}, fmt.Errorf("build %s prompt: %w", modality, ErrEmptyPayload)
		}
		return Request{
			InstructionText: fmt.Sprintf(constant.EmojiInstructionTemplate, sequence),
		}, nil

	case inspiration.ModalityImage:
		if len(payload.Images) == 0 {
			return Request{}, fmt.Errorf("build %s prompt: %w", modality, ErrEmptyPayload)
		}
		attachments := make([]llm.Attachment, 0, len(payload.Images))
		for _, img := range payload.Images {
			attachments = append(attachments, llm.Attachment{MediaType: img.MediaType, Data: img.Data})
		}
		return Request{
			InstructionText: constant.ImageInstruction,
			Attachments:     attachments,
		}, nil
	}

	return Request{}, fmt.Errorf("build prompt for %q: %w", modality, ErrUnknownModality)
}

// BuildPlan renders the research plan prompt for one idea.
func BuildPlan(title, summary string) string {
	return fmt.Sprintf(constant.ResearchPlanPromptV1, title, summary)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
