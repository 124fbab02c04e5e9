// Package vllm implements langchaingo's llms.Model over a vLLM server's
// OpenAI-compatible chat-completions endpoint. vLLM serves fine-tuned
// adapters under their own model identifiers, so the model name here is
// typically the adapter name, not a base model.
package vllm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var (
	// ErrEmptyResponse is returned when the server answers without any choice.
	ErrEmptyResponse = errors.New("no response")
)

// LLM is a client for a vLLM inference server.
type LLM struct {
	client *openai.Client
	model  string
}

var _ llms.Model = (*LLM)(nil)

// New returns a new vLLM client.
//
// Example:
//
//	model, err := vllm.New(
//		vllm.WithBaseURL("http://vllm:8000/v1"),
//		vllm.WithModel("tuned_adapter"),
//	)
func New(opts ...Option) (*LLM, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.baseURL == "" {
		return nil, errors.New("base URL not set")
	}

	config := openai.DefaultConfig(options.token)
	config.BaseURL = strings.TrimSuffix(options.baseURL, "/")
	if options.httpClient != nil {
		config.HTTPClient = options.httpClient
	}

	return &LLM{
		client: openai.NewClientWithConfig(config),
		model:  options.model,
	}, nil
}

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{Model: l.model}
	for _, opt := range options {
		opt(&opts)
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(message.Role),
			Content: flattenParts(message.Parts),
		})
	}

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    chatMessages,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
	})
	if err != nil {
		return nil, fmt.Errorf("vllm chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(resp.Choices))
	for i, choice := range resp.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: string(choice.FinishReason),
		}
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

// Call implements llms.Model.
func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

func toOpenAIRole(role schema.ChatMessageType) string {
	switch role {
	case schema.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case schema.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	case schema.ChatMessageType("tool"):
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

func flattenParts(parts []llms.ContentPart) string {
	var sb strings.Builder
	for _, part := range parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
