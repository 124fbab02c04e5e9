package retriever

import (
	"context"
	"fmt"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/tmc/langchaingo/vectorstores"
)

// LangChain is a semantic searcher backed directly by a langchaingo vector
// store (OpenSearch, pgvector, Qdrant, ...). The store embeds the query
// itself, so no separate Embedder is involved; use this variant when the
// deployment already runs a hosted vector index with server-side embedding.
type LangChain struct {
	store vectorstores.VectorStore
}

// NewLangChain creates a new searcher over a langchaingo vector store.
func NewLangChain(store vectorstores.VectorStore) *LangChain {
	return &LangChain{store: store}
}

// Search performs a similarity search and maps the hits onto retrieval
// results. The movie title is read from the "title" metadata key when
// present.
func (r *LangChain) Search(ctx context.Context, query string, limit int) ([]rag.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	docs, err := r.store.SimilaritySearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]rag.Result, len(docs))
	for i, doc := range docs {
		title := ""
		if v, ok := doc.Metadata["title"]; ok {
			title = fmt.Sprint(v)
		}
		content := doc.PageContent
		if title != "" && content != "" {
			content = fmt.Sprintf("%s: %s", title, content)
		} else if content == "" {
			content = title
		}
		results[i] = rag.Result{
			Title:   title,
			Content: content,
			Score:   float64(doc.Score),
		}
	}
	return results, nil
}
