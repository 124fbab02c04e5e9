package vllm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder produces embeddings through the server's OpenAI-compatible
// embeddings endpoint. vLLM serves embedding models the same way it serves
// chat models, so WithModel selects the embedding model here.
type Embedder struct {
	client *openai.Client
	model  string
}

// NewEmbedder returns a new embedding client.
func NewEmbedder(opts ...Option) (*Embedder, error) {
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

	return &Embedder{
		client: openai.NewClientWithConfig(config),
		model:  options.model,
	}, nil
}

// EmbedDocument embeds one piece of text.
func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Data[0].Embedding, nil
}
