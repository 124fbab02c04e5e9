package data

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cineanalyst/cineanalyst/rag"
)

// movieRecord is one row of the raw movies CSV, keyed by header name so the
// parser survives column reordering between dataset versions.
type movieRecord struct {
	ID       string
	Title    string
	Overview string
	Genres   string
}

// ReadMovies parses the raw TMDB movies CSV at path. Genres arrive as a JSON
// array of {id, name} objects and are flattened to their names; rows whose
// genres field does not parse keep an empty genre list rather than failing
// the whole file. Limit bounds the number of rows returned; zero or negative
// means all rows.
func ReadMovies(path string, limit int) ([]rag.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open movies csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := indexColumns(header)

	required := []string{"title", "overview"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("movies csv is missing column %q", name)
		}
	}

	var movies []rag.Movie
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		movie := rag.Movie{
			ID:       field(record, columns, "id"),
			Title:    field(record, columns, "title"),
			Overview: field(record, columns, "overview"),
			Genres:   parseGenres(field(record, columns, "genres")),
		}
		if movie.Title == "" {
			continue
		}
		movies = append(movies, movie)

		if limit > 0 && len(movies) >= limit {
			break
		}
	}

	return movies, nil
}

// ReadDirectors parses the raw TMDB credits CSV and returns a title to
// director mapping. The crew field is a JSON array of crew members; the
// director is the entry whose job is "Director". Rows with unparsable crew
// JSON are skipped.
func ReadDirectors(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open credits csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := indexColumns(header)

	for _, name := range []string{"title", "crew"} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("credits csv is missing column %q", name)
		}
	}

	directors := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		title := field(record, columns, "title")
		if title == "" {
			continue
		}
		if director := parseDirector(field(record, columns, "crew")); director != "" {
			directors[title] = director
		}
	}

	return directors, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names
}

func parseDirector(raw string) string {
	if raw == "" {
		return ""
	}
	var crew []struct {
		Job  string `json:"job"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &crew); err != nil {
		return ""
	}
	for _, member := range crew {
		if member.Job == "Director" {
			return member.Name
		}
	}
	return ""
}
