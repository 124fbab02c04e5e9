package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBPool defines the interface for a database connection pool.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres implements rag.MovieGraph over the same relational credits schema
// as SQLite, backed by a pgx connection pool.
type Postgres struct {
	pool DBPool
}

// PostgresOptions configuration for the Postgres movie graph.
type PostgresOptions struct {
	ConnString string
}

// NewPostgres creates a Postgres movie graph from a connection string.
func NewPostgres(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresWithPool creates a Postgres movie graph over an existing pool.
// Useful for testing with mocks.
func NewPostgresWithPool(pool DBPool) *Postgres {
	return &Postgres{pool: pool}
}

// InitSchema creates the movies and credits tables if they do not exist.
func (s *Postgres) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS movies (
			title    TEXT PRIMARY KEY,
			overview TEXT
		);
		CREATE TABLE IF NOT EXISTS credits (
			person_name TEXT NOT NULL,
			movie_title TEXT NOT NULL,
			role        TEXT NOT NULL,
			PRIMARY KEY (person_name, movie_title, role)
		);
		CREATE INDEX IF NOT EXISTS idx_credits_movie ON credits (movie_title);
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// IngestMovie upserts a movie row and its director credit.
func (s *Postgres) IngestMovie(ctx context.Context, movie rag.Movie) error {
	if movie.Title == "" {
		return fmt.Errorf("movie title is required")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO movies (title, overview) VALUES ($1, $2)
		 ON CONFLICT (title) DO UPDATE SET overview = EXCLUDED.overview`,
		movie.Title, movie.Overview)
	if err != nil {
		return fmt.Errorf("ingest movie %q: %w", movie.Title, err)
	}

	if movie.Director != "" {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO credits (person_name, movie_title, role) VALUES ($1, $2, 'director')
			 ON CONFLICT DO NOTHING`,
			movie.Director, movie.Title)
		if err != nil {
			return fmt.Errorf("ingest director of %q: %w", movie.Title, err)
		}
	}

	return nil
}

// ResolveTitle finds the longest known title contained in the query text,
// case-insensitively.
func (s *Postgres) ResolveTitle(ctx context.Context, query string) (string, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT title FROM movies
		 WHERE position(lower(title) IN lower($1)) > 0
		 ORDER BY length(title) DESC LIMIT 1`,
		strings.TrimSpace(query))

	var title string
	err := row.Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve title: %w", err)
	}
	return title, true, nil
}

// RelatedMovies returns up to limit other movies sharing a director credit
// with the anchor title.
func (s *Postgres) RelatedMovies(ctx context.Context, title string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT c2.movie_title
		 FROM credits c1
		 JOIN credits c2 ON c2.person_name = c1.person_name AND c2.role = c1.role
		 WHERE c1.movie_title = $1 AND c1.role = 'director' AND c2.movie_title <> c1.movie_title
		 ORDER BY c2.movie_title
		 LIMIT $2`,
		title, limit)
	if err != nil {
		return nil, fmt.Errorf("related movies: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var related string
		if err := rows.Scan(&related); err != nil {
			return nil, fmt.Errorf("scan related title: %w", err)
		}
		titles = append(titles, related)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("related movies: %w", err)
	}
	return titles, nil
}
