package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storyspark-be/internal/constant"
	"storyspark-be/pkg/idea"
	"storyspark-be/pkg/llm"
	"storyspark-be/pkg/prompt"
)

const (
	ideaTemperature = 0.8
	ideaTopP        = 0.95

	planTemperature    = 0.7
	planMaxTokens      = 2048
	planThinkingBudget = 256
)

// ModelClient is the external text/vision model collaborator.
type ModelClient interface {
	GenerateIdeas(ctx context.Context, req prompt.Request) ([]idea.StoryIdea, error)
	GeneratePlan(ctx context.Context, title, summary string) (string, error)
}

// IdeasSchema constrains idea generation to an array of {title, summary}.
var IdeasSchema = &llm.Schema{
	Type: "ARRAY",
	Items: &llm.Schema{
		Type: "OBJECT",
		Properties: map[string]*llm.Schema{
			"title":   {Type: "STRING", Description: constant.StoryIdeaTitleDescription},
			"summary": {Type: "STRING", Description: constant.StoryIdeaSummaryDescription},
		},
		Required: []string{"title", "summary"},
	},
}

// LLMClient implements ModelClient on top of any llm.LLMProvider.
type LLMClient struct {
	provider llm.LLMProvider
}

var _ ModelClient = (*LLMClient)(nil)

func NewLLMClient(provider llm.LLMProvider) *LLMClient {
	return &LLMClient{provider: provider}
}

func (c *LLMClient) GenerateIdeas(ctx context.Context, req prompt.Request) ([]idea.StoryIdea, error) {
	history := []llm.Message{{
		Role:        llm.RoleUser,
		Content:     req.InstructionText,
		Attachments: req.Attachments,
	}}

	raw, err := c.provider.Chat(ctx, history,
		llm.WithSystemInstruction(constant.StoryIdeasSystemInstructionV1),
		llm.WithJSONResponse(IdeasSchema),
		llm.WithTemperature(ideaTemperature),
		llm.WithTopP(ideaTopP),
	)
	if err != nil {
		return nil, classify(err)
	}

	return DecodeIdeas(raw)
}

func (c *LLMClient) GeneratePlan(ctx context.Context, title, summary string) (string, error) {
	raw, err := c.provider.Generate(ctx, prompt.BuildPlan(title, summary),
		llm.WithTemperature(planTemperature),
		llm.WithMaxTokens(planMaxTokens),
		llm.WithThinkingBudget(planThinkingBudget),
	)
	if err != nil {
		return "", classify(err)
	}

	plan := strings.TrimSpace(raw)
	if plan == "" {
		return "", newModelError(KindEmpty, llm.ErrEmptyResponse)
	}
	return plan, nil
}

func classify(err error) *ModelError {
	if errors.Is(err, llm.ErrEmptyResponse) {
		return newModelError(KindEmpty, err)
	}
	return newModelError(KindTransport, err)
}

type rawIdea struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
}

// DecodeIdeas parses a model answer into ideas. The answer must be a JSON
// array whose every entry has a non-blank title and summary.
func DecodeIdeas(raw string) ([]idea.StoryIdea, error) {
	body := []byte(raw)
	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, []byte("```json"))
	body = bytes.TrimPrefix(body, []byte("```"))
	body = bytes.TrimSuffix(body, []byte("```"))
	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return nil, newModelError(KindEmpty, llm.ErrEmptyResponse)
	}

	var entries []rawIdea
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, newModelError(KindSchema, fmt.Errorf("decode ideas: %w", err))
	}
	// a bare null decodes into a nil slice without error
	if entries == nil {
		return nil, newModelError(KindSchema, errors.New("decode ideas: answer is not an array"))
	}

	ideas := make([]idea.StoryIdea, 0, len(entries))
	for i, e := range entries {
		if e.Title == nil || strings.TrimSpace(*e.Title) == "" ||
			e.Summary == nil || strings.TrimSpace(*e.Summary) == "" {
			return nil, newModelError(KindSchema, fmt.Errorf("idea %d is missing title or summary", i))
		}
		ideas = append(ideas, idea.StoryIdea{Title: *e.Title, Summary: *e.Summary})
	}
	return ideas, nil
}
