package rag

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single retrieval hit. Content is the descriptive text that ends
// up in the prompt context; Title identifies the movie the hit belongs to.
type Result struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher is the uniform retrieval contract shared by the semantic and the
// relational strategy. Limit bounds the result count; returning fewer results
// than limit is valid when the backing store has fewer matches. A backend
// fault is propagated, not swallowed.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Snippets extracts the per-result context lines from a result list, in
// received order.
func Snippets(results []Result) []string {
	snippets := make([]string, len(results))
	for i, r := range results {
		snippets[i] = r.Content
	}
	return snippets
}

// Merge folds retrieved snippets into a single context block, one snippet per
// line, in received order. No deduplication and no truncation happen here;
// truncation, if any, is a prompt-construction concern. An empty input yields
// an empty string.
func Merge(snippets []string) string {
	return strings.Join(snippets, "\n")
}

// Movie is the unit of ingestion shared by the vector index and the movie
// graph.
type Movie struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Genres   []string `json:"genres,omitempty"`
	Director string   `json:"director,omitempty"`
}

// Snippet renders the movie as a single context line.
func (m Movie) Snippet() string {
	if m.Overview == "" {
		return m.Title
	}
	return fmt.Sprintf("%s: %s", m.Title, m.Overview)
}

// Embedder produces vector embeddings for text.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// Document is an embedded text snippet stored in a vector index.
type Document struct {
	ID        string
	Title     string
	Content   string
	Embedding []float32
}

// DocumentSearchResult is a document together with its similarity score.
type DocumentSearchResult struct {
	Document Document
	Score    float64
}

// VectorStore is a nearest-neighbor index over document embeddings. Search
// returns up to k hits ordered by similarity, descending; ties keep the
// store's insertion order.
type VectorStore interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]DocumentSearchResult, error)
}

// MovieGraph is a relationship store over movies and the people attached to
// them. ResolveTitle maps free query text onto a known title anchor;
// RelatedMovies walks the fixed one-hop same-director pattern from that
// anchor.
type MovieGraph interface {
	IngestMovie(ctx context.Context, movie Movie) error
	ResolveTitle(ctx context.Context, query string) (string, bool, error)
	RelatedMovies(ctx context.Context, title string, limit int) ([]string, error)
}
