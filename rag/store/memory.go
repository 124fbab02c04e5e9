package store

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cineanalyst/cineanalyst/rag"
)

// Memory is a simple in-memory vector store. It is good enough for tests,
// demos and small offline corpora; production deployments back the semantic
// searcher with a hosted index instead.
type Memory struct {
	documents  []rag.Document
	embeddings [][]float32
	embedder   rag.Embedder
}

// NewMemory creates a new in-memory vector store. The embedder may be nil
// when every added document carries its own embedding.
func NewMemory(embedder rag.Embedder) *Memory {
	return &Memory{
		documents:  make([]rag.Document, 0),
		embeddings: make([][]float32, 0),
		embedder:   embedder,
	}
}

// Add indexes the given documents, embedding any document that has no
// embedding yet.
func (s *Memory) Add(ctx context.Context, docs []rag.Document) error {
	for _, doc := range docs {
		embedding := doc.Embedding
		if len(embedding) == 0 {
			if s.embedder == nil {
				return fmt.Errorf("no embedder configured and document %q has no embedding", doc.ID)
			}
			var err error
			embedding, err = s.embedder.EmbedDocument(ctx, doc.Content)
			if err != nil {
				return fmt.Errorf("embed document %q: %w", doc.ID, err)
			}
		}
		s.documents = append(s.documents, doc)
		s.embeddings = append(s.embeddings, embedding)
	}
	return nil
}

// Search returns up to k documents by cosine similarity, descending. Ties
// keep insertion order.
func (s *Memory) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(s.documents) == 0 {
		return []rag.DocumentSearchResult{}, nil
	}

	type docScore struct {
		index int
		score float64
	}

	scores := make([]docScore, len(s.documents))
	for i, embedding := range s.embeddings {
		scores[i] = docScore{index: i, score: cosineSimilarity(queryEmbedding, embedding)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]rag.DocumentSearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = rag.DocumentSearchResult{
			Document: s.documents[scores[i].index],
			Score:    scores[i].score,
		}
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
