package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/redis/go-redis/v9"
)

const defaultCachePrefix = "cineanalyst:"

// Cached decorates a Searcher with a Redis read-through cache. Retrieval
// results are stored as JSON under a digest of (query, limit) with a TTL.
// Cache faults never fail a request: on any Redis error the inner searcher
// answers and the miss is simply not cached.
type Cached struct {
	inner  rag.Searcher
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// CacheOptions configuration for the retrieval cache.
type CacheOptions struct {
	Prefix string        // Key prefix, default "cineanalyst:"
	TTL    time.Duration // Expiration for cached result lists, default 5m
}

// NewCached wraps inner with a Redis-backed result cache.
func NewCached(inner rag.Searcher, client redis.UniversalClient, opts CacheOptions) *Cached {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	return &Cached{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *Cached) cacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%ssearch:%d:%x", c.prefix, limit, sum[:8])
}

// Search answers from the cache when possible and falls back to the inner
// searcher otherwise.
func (c *Cached) Search(ctx context.Context, query string, limit int) ([]rag.Result, error) {
	key := c.cacheKey(query, limit)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []rag.Result
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and fall through to the inner searcher.
		c.client.Del(ctx, key)
	}

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(results); err == nil {
		// Best effort: a failed SET must not fail the request.
		c.client.Set(ctx, key, data, c.ttl)
	}

	return results, nil
}
