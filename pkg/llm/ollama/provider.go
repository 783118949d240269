package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel accepts image attachments
	DefaultModel = "llava"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  [][]byte `json:"images,omitempty"` // base64 on the wire
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	// 1. Process Options
	options := llm.NewOptions(opts...)

	// 2. Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, 0, len(history)+1)
	if options.SystemInstruction != "" {
		ollamaMessages = append(ollamaMessages, ollamaMessage{Role: llm.RoleSystem, Content: options.SystemInstruction})
	}
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		m := ollamaMessage{Role: role, Content: msg.Content}
		for _, att := range msg.Attachments {
			m.Images = append(m.Images, att.Data)
		}
		ollamaMessages = append(ollamaMessages, m)
	}

	// 3. Prepare Payload
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			TopP:        options.TopP,
			NumPredict:  options.MaxTokens,
		},
	}

	if options.ResponseSchema != nil {
		format, err := json.Marshal(lowerSchema(options.ResponseSchema))
		if err != nil {
			return "", llm.NewFatalError(fmt.Errorf("marshal format: %w", err))
		}
		reqPayload.Format = format
	} else if options.ResponseMIMEType == "application/json" {
		reqPayload.Format = json.RawMessage(`"json"`)
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", llm.NewFatalError(fmt.Errorf("marshal request: %w", err))
	}

	// 4. Send Request
	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", llm.NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", llm.NewTransientError(fmt.Errorf("ollama request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.NewTransientError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", llm.ClassifyHTTPError("ollama", resp.StatusCode, bodyBytes)
	}

	// 5. Parse Response
	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", llm.NewFatalError(fmt.Errorf("unmarshal response: %w", err))
	}
	if strings.TrimSpace(ollamaResp.Message.Content) == "" {
		return "", llm.NewFatalError(llm.ErrEmptyResponse)
	}

	return ollamaResp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// lowerSchema converts the upper-case OpenAPI type names into the JSON-schema
// spelling Ollama expects.
func lowerSchema(s *llm.Schema) *llm.Schema {
	if s == nil {
		return nil
	}
	out := &llm.Schema{
		Type:        strings.ToLower(s.Type),
		Description: s.Description,
		Items:       lowerSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*llm.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = lowerSchema(prop)
		}
	}
	return out
}
