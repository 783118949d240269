package generation

import (
	"context"
	"errors"
	"testing"

	"storyspark-be/internal/constant"
	"storyspark-be/pkg/llm"
	"storyspark-be/pkg/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	answer  string
	err     error
	history []llm.Message
	options *llm.Options
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.history = history
	p.options = llm.NewOptions(opts...)
	return p.answer, p.err
}

func (p *stubProvider) Generate(ctx context.Context, text string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: text}}, opts...)
}

func TestDecodeIdeas(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantLen  int
		wantKind Kind
	}{
		{name: "plain array", raw: `[{"title":"A","summary":"a"},{"title":"B","summary":"b"}]`, wantLen: 2},
		{name: "fenced array", raw: "```json\n[{\"title\":\"A\",\"summary\":\"a\"}]\n```", wantLen: 1},
		{name: "empty array", raw: `[]`, wantLen: 0},
		{name: "object instead of array", raw: `{"title":"A","summary":"a"}`, wantKind: KindSchema},
		{name: "empty object", raw: `{}`, wantKind: KindSchema},
		{name: "null", raw: `null`, wantKind: KindSchema},
		{name: "fenced null", raw: "```json\nnull\n```", wantKind: KindSchema},
		{name: "missing summary", raw: `[{"title":"A"}]`, wantKind: KindSchema},
		{name: "blank title", raw: `[{"title":"  ","summary":"a"}]`, wantKind: KindSchema},
		{name: "not json", raw: `Here are some ideas!`, wantKind: KindSchema},
		{name: "nothing", raw: "   ", wantKind: KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas, err := DecodeIdeas(tt.raw)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.Nil(t, ideas)
				return
			}
			require.NoError(t, err)
			assert.Len(t, ideas, tt.wantLen)
			for _, got := range ideas {
				assert.Nil(t, got.ResearchPlan)
			}
		})
	}
}

func TestLLMClientIdeasRequest(t *testing.T) {
	p := &stubProvider{answer: `[{"title":"A","summary":"a"}]`}
	req := prompt.Request{
		InstructionText: "Generate story ideas inspired by this sequence of emojis: 🔥✨.",
		Attachments:     []llm.Attachment{{MediaType: "image/png", Data: []byte("x")}},
	}

	ideas, err := NewLLMClient(p).GenerateIdeas(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ideas, 1)

	require.Len(t, p.history, 1)
	assert.Equal(t, req.InstructionText, p.history[0].Content)
	assert.Equal(t, req.Attachments, p.history[0].Attachments)
	assert.Equal(t, constant.StoryIdeasSystemInstructionV1, p.options.SystemInstruction)
	assert.Equal(t, "application/json", p.options.ResponseMIMEType)
	assert.Same(t, IdeasSchema, p.options.ResponseSchema)
	assert.Equal(t, 0.8, p.options.Temperature)
	assert.Equal(t, 0.95, p.options.TopP)
	assert.Equal(t, []string{"title", "summary"}, IdeasSchema.Items.Required)
}

func TestLLMClientPlanRequest(t *testing.T) {
	p := &stubProvider{answer: "\n  ### Story Outline\nbody  \n"}

	plan, err := NewLLMClient(p).GeneratePlan(context.Background(), "Title", "Summary")
	require.NoError(t, err)

	assert.Equal(t, "### Story Outline\nbody", plan)
	assert.Contains(t, p.history[0].Content, `Title: "Title"`)
	assert.Equal(t, 0.7, p.options.Temperature)
	assert.Equal(t, 2048, p.options.MaxTokens)
	require.NotNil(t, p.options.ThinkingBudget)
	assert.Equal(t, 256, *p.options.ThinkingBudget)
}

func TestLLMClientClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		want   Kind
	}{
		{name: "transport", err: llm.NewTransientError(errors.New("dial tcp: refused")), want: KindTransport},
		{name: "provider empty", err: llm.NewFatalError(llm.ErrEmptyResponse), want: KindEmpty},
		{name: "blank plan", answer: " \n ", want: KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewLLMClient(&stubProvider{answer: tt.answer, err: tt.err})
			_, err := client.GeneratePlan(context.Background(), "t", "s")
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}
