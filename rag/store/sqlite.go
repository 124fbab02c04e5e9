package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cineanalyst/cineanalyst/rag"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite implements rag.MovieGraph over a relational credits schema in
// SQLite: a movies table plus a credits table linking people to movies by
// role. The one-hop same-director pattern becomes a self-join on credits.
type SQLite struct {
	db *sql.DB
}

// SQLiteOptions configuration for the SQLite movie graph.
type SQLiteOptions struct {
	Path string // Database path; ":memory:" for an in-process store
}

// NewSQLite opens (and if necessary initializes) a SQLite movie graph.
func NewSQLite(opts SQLiteOptions) (*SQLite, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	store := &SQLite{db: db}
	if err := store.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// InitSchema creates the movies and credits tables if they do not exist.
func (s *SQLite) InitSchema(ctx context.Context) error {
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
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// IngestMovie upserts a movie row and its director credit.
func (s *SQLite) IngestMovie(ctx context.Context, movie rag.Movie) error {
	if movie.Title == "" {
		return fmt.Errorf("movie title is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movies (title, overview) VALUES (?, ?)
		 ON CONFLICT(title) DO UPDATE SET overview = excluded.overview`,
		movie.Title, movie.Overview)
	if err != nil {
		return fmt.Errorf("ingest movie %q: %w", movie.Title, err)
	}

	if movie.Director != "" {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO credits (person_name, movie_title, role) VALUES (?, ?, 'director')`,
			movie.Director, movie.Title)
		if err != nil {
			return fmt.Errorf("ingest director of %q: %w", movie.Title, err)
		}
	}

	return nil
}

// ResolveTitle finds the longest known title contained in the query text,
// case-insensitively.
func (s *SQLite) ResolveTitle(ctx context.Context, query string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT title FROM movies
		 WHERE instr(lower(?), lower(title)) > 0
		 ORDER BY length(title) DESC LIMIT 1`,
		strings.TrimSpace(query))

	var title string
	switch err := row.Scan(&title); err {
	case nil:
		return title, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("resolve title: %w", err)
	}
}

// RelatedMovies returns up to limit other movies sharing a director credit
// with the anchor title.
func (s *SQLite) RelatedMovies(ctx context.Context, title string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT c2.movie_title
		 FROM credits c1
		 JOIN credits c2 ON c2.person_name = c1.person_name AND c2.role = c1.role
		 WHERE c1.movie_title = ? AND c1.role = 'director' AND c2.movie_title <> c1.movie_title
		 ORDER BY c2.movie_title
		 LIMIT ?`,
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
