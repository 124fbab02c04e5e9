package data

import (
	"context"
	"fmt"

	"github.com/cineanalyst/cineanalyst/log"
	"github.com/cineanalyst/cineanalyst/rag"
)

// defaultIngestLimit bounds an ingestion run to a manageable sample of the
// raw dataset.
const defaultIngestLimit = 100

// Ingestor loads the raw dataset into the retrieval stores.
type Ingestor struct {
	vector   rag.VectorStore
	embedder rag.Embedder
	graph    rag.MovieGraph
	limit    int
}

// IngestorOptions wires the ingestion targets. Vector plus Embedder feed the
// semantic index; Graph feeds the movie graph. Either side may be nil to
// skip it.
type IngestorOptions struct {
	Vector   rag.VectorStore
	Embedder rag.Embedder
	Graph    rag.MovieGraph

	// Limit bounds the number of movies ingested. Default 100.
	Limit int
}

// NewIngestor creates an Ingestor. At least one target must be configured.
func NewIngestor(opts IngestorOptions) (*Ingestor, error) {
	if opts.Vector == nil && opts.Graph == nil {
		return nil, fmt.Errorf("no ingestion target configured")
	}
	if opts.Vector != nil && opts.Embedder == nil {
		return nil, fmt.Errorf("vector ingestion requires an embedder")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultIngestLimit
	}

	return &Ingestor{
		vector:   opts.Vector,
		embedder: opts.Embedder,
		graph:    opts.Graph,
		limit:    opts.Limit,
	}, nil
}

// Run ingests the movies CSV at moviesPath into the configured stores.
// creditsPath may be empty; when present it supplies each movie's director
// for the graph side. Ingestion is resilient per row: a row that fails to
// embed or to land in the movie graph is logged and skipped, never aborting
// the rest of the run. Run returns the number of movies that reached every
// configured target.
func (in *Ingestor) Run(ctx context.Context, moviesPath, creditsPath string) (int, error) {
	movies, err := ReadMovies(moviesPath, in.limit)
	if err != nil {
		return 0, err
	}

	if creditsPath != "" {
		directors, err := ReadDirectors(creditsPath)
		if err != nil {
			return 0, err
		}
		for i := range movies {
			movies[i].Director = directors[movies[i].Title]
		}
	}

	count := len(movies)
	if in.vector != nil {
		n, err := in.ingestVectors(ctx, movies)
		if err != nil {
			return 0, err
		}
		if n < count {
			count = n
		}
	}
	if in.graph != nil {
		n := in.ingestGraph(ctx, movies)
		if n < count {
			count = n
		}
	}

	return count, nil
}

// ingestVectors embeds overviews and indexes them, skipping rows that fail
// to embed. A failure of the batch Add is still fatal: at that point the
// store rejected the whole write, not one row.
func (in *Ingestor) ingestVectors(ctx context.Context, movies []rag.Movie) (int, error) {
	log.Info("generating embeddings for %d movies", len(movies))

	docs := make([]rag.Document, 0, len(movies))
	for _, movie := range movies {
		if movie.Overview == "" {
			continue
		}
		embedding, err := in.embedder.EmbedDocument(ctx, movie.Overview)
		if err != nil {
			log.Warn("skipping %q: embed failed: %v", movie.Title, err)
			continue
		}
		docs = append(docs, rag.Document{
			ID:        movie.ID,
			Title:     movie.Title,
			Content:   movie.Overview,
			Embedding: embedding,
		})
	}

	if err := in.vector.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("add documents to vector store: %w", err)
	}

	log.Info("vector ingestion complete: %d documents", len(docs))
	return len(docs), nil
}

// ingestGraph loads movies one at a time, skipping rows the graph rejects.
func (in *Ingestor) ingestGraph(ctx context.Context, movies []rag.Movie) int {
	log.Info("ingesting %d movies into the movie graph", len(movies))

	ingested := 0
	for _, movie := range movies {
		if err := in.graph.IngestMovie(ctx, movie); err != nil {
			log.Warn("skipping %q: movie graph rejected it: %v", movie.Title, err)
			continue
		}
		ingested++
	}

	log.Info("graph ingestion complete: %d of %d movies", ingested, len(movies))
	return ingested
}
