package llm

import (
	"context"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Attachment is inline binary content sent alongside a message (images).
type Attachment struct {
	MediaType string
	Data      []byte
}

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role        string // "user", "assistant", "system"
	Content     string
	Attachments []Attachment
}

// Schema is a minimal JSON-schema subset used to constrain structured output.
// Type names follow the OpenAPI upper-case style ("ARRAY", "OBJECT", "STRING").
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature       float64
	TopP              float64
	MaxTokens         int
	Model             string // Override default model
	SystemInstruction string
	ResponseMIMEType  string
	ResponseSchema    *Schema
	ThinkingBudget    *int
}

// NewOptions applies opts over the shared defaults.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = topP
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemInstruction(text string) Option {
	return func(o *Options) {
		o.SystemInstruction = text
	}
}

// WithJSONResponse asks for application/json output matching schema.
func WithJSONResponse(schema *Schema) Option {
	return func(o *Options) {
		o.ResponseMIMEType = "application/json"
		o.ResponseSchema = schema
	}
}

func WithThinkingBudget(tokens int) Option {
	return func(o *Options) {
		o.ThinkingBudget = &tokens
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
