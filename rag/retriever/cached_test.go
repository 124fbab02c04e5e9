package retriever_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/cineanalyst/cineanalyst/rag/retriever"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	results []rag.Result
	err     error
	calls   int
}

func (s *countingSearcher) Search(ctx context.Context, query string, limit int) ([]rag.Result, error) {
	s.calls++
	return s.results, s.err
}

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedSearchReadThrough(t *testing.T) {
	t.Parallel()

	_, client := newCacheClient(t)
	inner := &countingSearcher{results: []rag.Result{{Title: "기생충", Content: "기생충: 반지하 가족"}}}
	cached := retriever.NewCached(inner, client, retriever.CacheOptions{TTL: time.Minute})

	first, err := cached.Search(context.Background(), "봉준호 영화", 3)
	require.NoError(t, err)
	second, err := cached.Search(context.Background(), "봉준호 영화", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second search must be served from the cache")
}

func TestCachedSearchKeyedByLimit(t *testing.T) {
	t.Parallel()

	_, client := newCacheClient(t)
	inner := &countingSearcher{results: []rag.Result{{Title: "기생충", Content: "기생충"}}}
	cached := retriever.NewCached(inner, client, retriever.CacheOptions{})

	_, err := cached.Search(context.Background(), "봉준호 영화", 3)
	require.NoError(t, err)
	_, err = cached.Search(context.Background(), "봉준호 영화", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "a different limit is a different cache entry")
}

func TestCachedSearchInnerErrorNotCached(t *testing.T) {
	t.Parallel()

	_, client := newCacheClient(t)
	backendDown := errors.New("index unreachable")
	inner := &countingSearcher{err: backendDown}
	cached := retriever.NewCached(inner, client, retriever.CacheOptions{})

	_, err := cached.Search(context.Background(), "쿼리", 2)
	assert.ErrorIs(t, err, backendDown)

	inner.err = nil
	inner.results = []rag.Result{{Title: "마더", Content: "마더"}}
	results, err := cached.Search(context.Background(), "쿼리", 2)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearchSurvivesRedisOutage(t *testing.T) {
	t.Parallel()

	mr, client := newCacheClient(t)
	mr.Close()

	inner := &countingSearcher{results: []rag.Result{{Title: "마더", Content: "마더"}}}
	cached := retriever.NewCached(inner, client, retriever.CacheOptions{})

	results, err := cached.Search(context.Background(), "쿼리", 2)
	require.NoError(t, err, "a cache fault must not fail the request")
	assert.Len(t, results, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSearchCorruptEntryFallsBack(t *testing.T) {
	t.Parallel()

	mr, client := newCacheClient(t)
	inner := &countingSearcher{results: []rag.Result{{Title: "마더", Content: "마더"}}}
	cached := retriever.NewCached(inner, client, retriever.CacheOptions{})

	_, err := cached.Search(context.Background(), "쿼리", 2)
	require.NoError(t, err)

	// Corrupt every cached value, then search again.
	for _, key := range mr.Keys() {
		require.NoError(t, mr.Set(key, "not json"))
	}

	results, err := cached.Search(context.Background(), "쿼리", 2)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, inner.calls)
}
