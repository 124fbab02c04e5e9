package rag

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// LangChainEmbedder adapts a langchaingo embeddings.Embedder to the Embedder
// interface, so any embedding provider langchaingo supports (OpenAI,
// HuggingFace TEI, Ollama, ...) can back the semantic searcher.
type LangChainEmbedder struct {
	embedder embeddings.Embedder
}

// NewLangChainEmbedder creates a new adapter for langchaingo embedders.
func NewLangChainEmbedder(embedder embeddings.Embedder) *LangChainEmbedder {
	return &LangChainEmbedder{embedder: embedder}
}

// EmbedDocument embeds a single piece of text using the underlying embedder.
func (e *LangChainEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vector, nil
}
