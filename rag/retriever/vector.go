package retriever

import (
	"context"
	"fmt"

	"github.com/cineanalyst/cineanalyst/rag"
)

// Vector implements the semantic retrieval strategy: the query is embedded
// and ranked against a precomputed embedding space by nearest-neighbor
// similarity.
type Vector struct {
	store    rag.VectorStore
	embedder rag.Embedder
}

// NewVector creates a new semantic searcher over the given vector store and
// embedder.
func NewVector(store rag.VectorStore, embedder rag.Embedder) *Vector {
	return &Vector{
		store:    store,
		embedder: embedder,
	}
}

// Search embeds the query and returns up to limit hits by similarity,
// descending.
func (r *Vector) Search(ctx context.Context, query string, limit int) ([]rag.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	queryEmbedding, err := r.embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, queryEmbedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]rag.Result, len(hits))
	for i, hit := range hits {
		results[i] = rag.Result{
			Title:   hit.Document.Title,
			Content: documentSnippet(hit.Document),
			Score:   hit.Score,
		}
	}
	return results, nil
}

func documentSnippet(doc rag.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	if doc.Content == "" {
		return doc.Title
	}
	return fmt.Sprintf("%s: %s", doc.Title, doc.Content)
}
