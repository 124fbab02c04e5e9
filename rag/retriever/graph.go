package retriever

import (
	"context"
	"fmt"

	"github.com/cineanalyst/cineanalyst/rag"
)

// Graph implements the relational retrieval strategy: the query text is
// anchored to a known movie title, then the movie graph is walked one hop
// along the same-director pattern to collect related titles.
type Graph struct {
	graph rag.MovieGraph
}

// NewGraph creates a new relational searcher over the given movie graph.
func NewGraph(graph rag.MovieGraph) *Graph {
	return &Graph{graph: graph}
}

// Search resolves a title anchor from the query and returns up to limit
// related titles. A query that does not resolve to a known movie yields an
// empty result list, not an error.
func (r *Graph) Search(ctx context.Context, query string, limit int) ([]rag.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	anchor, ok, err := r.graph.ResolveTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolve title anchor: %w", err)
	}
	if !ok {
		return []rag.Result{}, nil
	}

	titles, err := r.graph.RelatedMovies(ctx, anchor, limit)
	if err != nil {
		return nil, fmt.Errorf("related movies for %q: %w", anchor, err)
	}

	results := make([]rag.Result, len(titles))
	for i, title := range titles {
		results[i] = rag.Result{
			Title:   title,
			Content: title,
		}
	}
	return results, nil
}
