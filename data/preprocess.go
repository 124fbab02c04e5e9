package data

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cineanalyst/cineanalyst/log"
)

const (
	// trainingSystemPrompt is the fixed system instruction of every training
	// example.
	trainingSystemPrompt = "You are an expert movie analyst. Analyze the movie details and output a JSON response."

	// minOverviewLength drops rows whose overview is too short to teach the
	// model anything.
	minOverviewLength = 10

	// summaryPrefixLength bounds the pseudo-label summary.
	summaryPrefixLength = 50
)

// ChatTurn is one message of a chat-format training example.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TrainingExample is one JSONL record in chat template format.
type TrainingExample struct {
	Messages []ChatTurn `json:"messages"`
}

// assistantLabel is the pseudo-label the preprocessor writes as the expected
// model output.
type assistantLabel struct {
	Summary  string `json:"summary"`
	Analysis string `json:"analysis"`
}

// Preprocess converts the raw movies CSV at inputPath into chat-format JSONL
// training examples at outputPath. sampleSize bounds the number of source
// rows consumed; zero means all. It returns the number of examples written.
func Preprocess(inputPath, outputPath string, sampleSize int) (int, error) {
	log.Info("preprocessing data: %s", inputPath)

	movies, err := ReadMovies(inputPath, sampleSize)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	written := 0
	for _, movie := range movies {
		example, ok := buildExample(movie.Title, movie.Overview, movie.Genres)
		if !ok {
			continue
		}
		if err := encoder.Encode(example); err != nil {
			return written, fmt.Errorf("write training example: %w", err)
		}
		written++
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("flush output: %w", err)
	}

	log.Info("preprocessing complete: %s (%d items)", outputPath, written)
	return written, nil
}

// buildExample turns one movie row into a training example, or reports that
// the row is unusable.
func buildExample(title, overview string, genres []string) (TrainingExample, bool) {
	if len(overview) < minOverviewLength {
		return TrainingExample{}, false
	}

	userContent := fmt.Sprintf("Title: %s\nGenres: %s\nOverview: %s",
		title, strings.Join(genres, ", "), overview)

	label, err := json.Marshal(assistantLabel{
		Summary:  truncateBytes(overview, summaryPrefixLength) + "...",
		Analysis: "This movie features strong narrative elements.",
	})
	if err != nil {
		return TrainingExample{}, false
	}

	return TrainingExample{Messages: []ChatTurn{
		{Role: "system", Content: trainingSystemPrompt},
		{Role: "user", Content: userContent},
		{Role: "assistant", Content: string(label)},
	}}, true
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Walk back to a rune boundary so the cut never splits a character.
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return s[:limit]
}
