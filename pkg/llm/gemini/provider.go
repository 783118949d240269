package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyspark-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"

	maxResponseSize = 10 * 1024 * 1024
)

type GeminiProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(baseURL, apiKey, modelName string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64 on the wire
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	Thought    bool              `json:"thought,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiGenerationConfig struct {
	Temperature      *float64              `json:"temperature,omitempty"`
	TopP             *float64              `json:"topP,omitempty"`
	MaxOutputTokens  int                   `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string                `json:"responseMimeType,omitempty"`
	ResponseSchema   *llm.Schema           `json:"responseSchema,omitempty"`
	ThinkingConfig   *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// --- Interface Implementation ---

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.NewOptions(opts...)

	payload, err := json.Marshal(g.buildRequest(history, options))
	if err != nil {
		return "", llm.NewFatalError(fmt.Errorf("marshal request: %w", err))
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", g.BaseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", llm.NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", llm.NewTransientError(fmt.Errorf("gemini request failed: %w", err))
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", llm.NewTransientError(fmt.Errorf("read response: %w", err))
	}

	if res.StatusCode != http.StatusOK {
		return "", llm.ClassifyHTTPError("gemini", res.StatusCode, resBody)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", llm.NewFatalError(fmt.Errorf("unmarshal response: %w", err))
	}

	return extractText(geminiRes)
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (g *GeminiProvider) buildRequest(history []llm.Message, options *llm.Options) geminiRequest {
	var system []string
	if options.SystemInstruction != "" {
		system = append(system, options.SystemInstruction)
	}

	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		role := msg.Role
		if role == llm.RoleAssistant {
			role = "model"
		}
		parts := []geminiPart{{Text: msg.Content}}
		for _, att := range msg.Attachments {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{MimeType: att.MediaType, Data: att.Data},
			})
		}
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}

	req := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      &options.Temperature,
			MaxOutputTokens:  options.MaxTokens,
			ResponseMimeType: options.ResponseMIMEType,
			ResponseSchema:   options.ResponseSchema,
		},
	}
	if options.TopP > 0 {
		req.GenerationConfig.TopP = &options.TopP
	}
	if options.ThinkingBudget != nil {
		req.GenerationConfig.ThinkingConfig = &geminiThinkingConfig{ThinkingBudget: *options.ThinkingBudget}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}},
		}
	}
	return req
}

func extractText(res geminiResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return "", llm.NewFatalError(fmt.Errorf("gemini blocked the prompt: %s", res.PromptFeedback.BlockReason))
		}
		return "", llm.NewFatalError(llm.ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", llm.NewFatalError(llm.ErrEmptyResponse)
	}
	return text.String(), nil
}
