package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cineanalyst/cineanalyst/rag"
	"github.com/redis/go-redis/v9"
)

// FalkorDB implements rag.MovieGraph over a FalkorDB graph reached through
// the Redis protocol. Movies are (:Movie) nodes, directors are (:Person)
// nodes connected by [:DIRECTED] relationships, genres are (:Genre) nodes
// connected by [:HAS_GENRE].
type FalkorDB struct {
	client    redis.UniversalClient
	graphName string
}

// NewFalkorDB creates a movie graph from a connection string of the form
// falkordb://host:port/graph_name.
func NewFalkorDB(connectionString string) (*FalkorDB, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	addr := u.Host
	if addr == "" {
		return nil, fmt.Errorf("invalid connection string: missing host")
	}
	graphName := strings.TrimPrefix(u.Path, "/")
	if graphName == "" {
		graphName = "movies"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &FalkorDB{
		client:    client,
		graphName: graphName,
	}, nil
}

// NewFalkorDBWithClient creates a movie graph over an existing Redis client.
func NewFalkorDBWithClient(client redis.UniversalClient, graphName string) *FalkorDB {
	if graphName == "" {
		graphName = "movies"
	}
	return &FalkorDB{
		client:    client,
		graphName: graphName,
	}
}

// Close releases the underlying Redis connection.
func (f *FalkorDB) Close() error {
	return f.client.Close()
}

// IngestMovie upserts a movie node together with its director and genre
// relationships.
func (f *FalkorDB) IngestMovie(ctx context.Context, movie rag.Movie) error {
	if movie.Title == "" {
		return fmt.Errorf("movie title is required")
	}

	query := fmt.Sprintf("MERGE (m:Movie {title: '%s'}) SET m.overview = '%s'",
		escapeCypher(movie.Title), escapeCypher(movie.Overview))
	if _, err := f.query(ctx, query); err != nil {
		return fmt.Errorf("ingest movie %q: %w", movie.Title, err)
	}

	if movie.Director != "" {
		query = fmt.Sprintf(
			"MATCH (m:Movie {title: '%s'}) MERGE (p:Person {name: '%s'}) MERGE (p)-[:DIRECTED]->(m)",
			escapeCypher(movie.Title), escapeCypher(movie.Director))
		if _, err := f.query(ctx, query); err != nil {
			return fmt.Errorf("ingest director of %q: %w", movie.Title, err)
		}
	}

	for _, genre := range movie.Genres {
		if genre == "" {
			continue
		}
		query = fmt.Sprintf(
			"MATCH (m:Movie {title: '%s'}) MERGE (g:Genre {name: '%s'}) MERGE (m)-[:HAS_GENRE]->(g)",
			escapeCypher(movie.Title), escapeCypher(genre))
		if _, err := f.query(ctx, query); err != nil {
			return fmt.Errorf("ingest genre %q of %q: %w", genre, movie.Title, err)
		}
	}

	return nil
}

// ResolveTitle finds the movie title the query text is anchored on: the
// longest known title contained in the query, case-insensitively. The second
// return value is false when no title matches.
func (f *FalkorDB) ResolveTitle(ctx context.Context, query string) (string, bool, error) {
	cypher := fmt.Sprintf(
		"MATCH (m:Movie) WHERE toLower('%s') CONTAINS toLower(m.title) RETURN m.title ORDER BY size(m.title) DESC LIMIT 1",
		escapeCypher(query))

	rows, err := f.query(ctx, cypher)
	if err != nil {
		return "", false, fmt.Errorf("resolve title: %w", err)
	}

	titles := firstColumn(rows)
	if len(titles) == 0 {
		return "", false, nil
	}
	return titles[0], true, nil
}

// RelatedMovies walks the one-hop same-director pattern from the anchor
// title and returns up to limit related titles.
func (f *FalkorDB) RelatedMovies(ctx context.Context, title string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	cypher := fmt.Sprintf(
		"MATCH (m:Movie {title: '%s'})<-[:DIRECTED]-(p:Person)-[:DIRECTED]->(other:Movie) "+
			"WHERE other.title <> m.title RETURN DISTINCT other.title LIMIT %d",
		escapeCypher(title), limit)

	rows, err := f.query(ctx, cypher)
	if err != nil {
		return nil, fmt.Errorf("related movies: %w", err)
	}
	return firstColumn(rows), nil
}

// query executes a Cypher query with GRAPH.QUERY and returns the result rows.
func (f *FalkorDB) query(ctx context.Context, cypher string) ([][]interface{}, error) {
	res, err := f.client.Do(ctx, "GRAPH.QUERY", f.graphName, cypher).Result()
	if err != nil {
		return nil, err
	}
	return parseGraphReply(res)
}

// parseGraphReply extracts the result rows from a GRAPH.QUERY reply. The
// reply is [header, rows, statistics] for reading queries and
// [rows, statistics] or [statistics] for writing ones.
func parseGraphReply(res interface{}) ([][]interface{}, error) {
	reply, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", res)
	}

	var rawRows interface{}
	switch len(reply) {
	case 3:
		rawRows = reply[1]
	case 2:
		rawRows = reply[0]
	case 1:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected response length: %d", len(reply))
	}

	items, ok := rawRows.([]interface{})
	if !ok {
		return nil, nil
	}

	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		if cells, ok := item.([]interface{}); ok {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

// firstColumn flattens the first cell of every row to a string, skipping
// empty cells.
func firstColumn(rows [][]interface{}) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if value := fmt.Sprint(row[0]); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// escapeCypher escapes a string for inlining into single-quoted Cypher
// literals.
func escapeCypher(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
