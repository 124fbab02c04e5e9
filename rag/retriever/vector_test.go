package retriever_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/cineanalyst/cineanalyst/rag/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *stubEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.vector, e.err
}

type stubVectorStore struct {
	hits []rag.DocumentSearchResult
	err  error

	gotEmbedding []float32
	gotK         int
}

func (s *stubVectorStore) Add(ctx context.Context, docs []rag.Document) error {
	return nil
}

func (s *stubVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	s.gotEmbedding = queryEmbedding
	s.gotK = k
	return s.hits, s.err
}

func TestVectorSearch(t *testing.T) {
	t.Parallel()

	store := &stubVectorStore{
		hits: []rag.DocumentSearchResult{
			{Document: rag.Document{Title: "기생충", Content: "반지하 가족 이야기"}, Score: 0.92},
			{Document: rag.Document{Title: "설국열차", Content: "꼬리칸의 반란"}, Score: 0.81},
		},
	}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}

	r := retriever.NewVector(store, embedder)
	results, err := r.Search(context.Background(), "액션 영화 추천해줘", 3)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "기생충", results[0].Title)
	assert.Equal(t, "기생충: 반지하 가족 이야기", results[0].Content)
	assert.Equal(t, 0.92, results[0].Score)
	assert.Equal(t, "설국열차: 꼬리칸의 반란", results[1].Content)

	assert.Equal(t, []float32{0.1, 0.2}, store.gotEmbedding)
	assert.Equal(t, 3, store.gotK)
	assert.Equal(t, 1, embedder.calls)
}

func TestVectorSearchRejectsNonPositiveLimit(t *testing.T) {
	t.Parallel()

	r := retriever.NewVector(&stubVectorStore{}, &stubEmbedder{})
	_, err := r.Search(context.Background(), "쿼리", 0)
	assert.Error(t, err)
}

func TestVectorSearchPropagatesStoreError(t *testing.T) {
	t.Parallel()

	backendDown := errors.New("index unreachable")
	r := retriever.NewVector(&stubVectorStore{err: backendDown}, &stubEmbedder{})

	_, err := r.Search(context.Background(), "쿼리", 2)
	assert.ErrorIs(t, err, backendDown)
}

func TestVectorSearchPropagatesEmbedderError(t *testing.T) {
	t.Parallel()

	embedDown := errors.New("embedding service unreachable")
	r := retriever.NewVector(&stubVectorStore{}, &stubEmbedder{err: embedDown})

	_, err := r.Search(context.Background(), "쿼리", 2)
	assert.ErrorIs(t, err, embedDown)
}
