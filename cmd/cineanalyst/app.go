package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/cineanalyst/cineanalyst/agent"
	"github.com/cineanalyst/cineanalyst/config"
	"github.com/cineanalyst/cineanalyst/data"
	"github.com/cineanalyst/cineanalyst/llm/vllm"
	"github.com/cineanalyst/cineanalyst/log"
	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/cineanalyst/cineanalyst/rag/retriever"
	"github.com/cineanalyst/cineanalyst/rag/store"
)

// app bundles the wired assistant with the resources that must be released
// on shutdown.
type app struct {
	assistant *agent.Assistant
	closers   []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("close: %v", err)
		}
	}
}

// buildApp wires the full analysis stack from configuration: model client,
// embedder, retrieval stores, retrievers, workflow and assistant.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	model, err := vllm.New(
		vllm.WithBaseURL(cfg.Model.BaseURL),
		vllm.WithModel(cfg.Model.Name),
		vllm.WithToken(cfg.Model.Token),
	)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}

	embedder, err := vllm.NewEmbedder(
		vllm.WithBaseURL(cfg.Model.BaseURL),
		vllm.WithModel(cfg.Vector.EmbeddingModel),
		vllm.WithToken(cfg.Model.Token),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vectorStore := store.NewMemory(embedder)
	if err := seedVectorStore(ctx, cfg, vectorStore, embedder); err != nil {
		a.close()
		return nil, err
	}

	movieGraph, err := buildMovieGraph(ctx, cfg, a)
	if err != nil {
		a.close()
		return nil, err
	}

	var vectorSearch rag.Searcher = retriever.NewVector(vectorStore, embedder)
	var graphSearch rag.Searcher = retriever.NewGraph(movieGraph)

	if cfg.Cache.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		a.closers = append(a.closers, client.Close)

		cacheOpts := retriever.CacheOptions{Prefix: cfg.Cache.Prefix, TTL: cfg.Cache.TTL}
		vectorSearch = retriever.NewCached(vectorSearch, client, cacheOpts)
		graphSearch = retriever.NewCached(graphSearch, client, cacheOpts)
	}

	analyst := agent.NewAnalyst(model, agent.AnalystOptions{
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
		Timeout:     cfg.Model.Timeout,
	})

	workflow, err := agent.NewWorkflow(agent.WorkflowOptions{
		Vector:      vectorSearch,
		Graph:       graphSearch,
		Analyst:     analyst,
		SearchLimit: cfg.Vector.TopK,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build workflow: %w", err)
	}

	a.assistant = agent.NewAssistant(workflow)
	return a, nil
}

// seedVectorStore loads the local movie CSV into the in-process semantic
// index at startup. A missing dataset is not fatal; the semantic side just
// starts empty.
func seedVectorStore(ctx context.Context, cfg *config.Config, vectorStore rag.VectorStore, embedder rag.Embedder) error {
	if _, err := os.Stat(cfg.Data.MoviesCSV); err != nil {
		log.Warn("movies dataset %s not found, semantic index starts empty", cfg.Data.MoviesCSV)
		return nil
	}

	ingestor, err := data.NewIngestor(data.IngestorOptions{
		Vector:   vectorStore,
		Embedder: embedder,
	})
	if err != nil {
		return err
	}

	count, err := ingestor.Run(ctx, cfg.Data.MoviesCSV, "")
	if err != nil {
		return fmt.Errorf("seed semantic index: %w", err)
	}
	log.Info("semantic index seeded with %d movies", count)
	return nil
}

// buildMovieGraph opens the configured relational backend.
func buildMovieGraph(ctx context.Context, cfg *config.Config, a *app) (rag.MovieGraph, error) {
	switch cfg.Relational.Driver {
	case "falkordb":
		graph, err := store.NewFalkorDB(cfg.Relational.DSN)
		if err != nil {
			return nil, fmt.Errorf("open falkordb: %w", err)
		}
		a.closers = append(a.closers, graph.Close)
		return graph, nil

	case "sqlite":
		graph, err := store.NewSQLite(store.SQLiteOptions{Path: cfg.Relational.DSN})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, graph.Close)
		return graph, nil

	case "postgres":
		graph, err := store.NewPostgres(ctx, store.PostgresOptions{ConnString: cfg.Relational.DSN})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := graph.InitSchema(ctx); err != nil {
			graph.Close()
			return nil, fmt.Errorf("init postgres schema: %w", err)
		}
		a.closers = append(a.closers, func() error {
			graph.Close()
			return nil
		})
		return graph, nil

	default:
		return nil, fmt.Errorf("unknown relational driver: %s", cfg.Relational.Driver)
	}
}
