package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cineanalyst/cineanalyst/log"
)

// DefaultMoviesURL is the public TMDB 5000 movies dataset.
const DefaultMoviesURL = "https://raw.githubusercontent.com/CTopham/TophamRepo/master/Movie%20Project/Resources/tmdb_5000_movies.csv"

// Crawler downloads raw dataset files over HTTP.
type Crawler struct {
	client *http.Client
}

// NewCrawler creates a Crawler. A nil client falls back to
// http.DefaultClient.
func NewCrawler(client *http.Client) *Crawler {
	if client == nil {
		client = http.DefaultClient
	}
	return &Crawler{client: client}
}

// Download fetches url and writes the body to outputPath, creating parent
// directories as needed. It returns the number of bytes written.
func (c *Crawler) Download(ctx context.Context, url, outputPath string) (int64, error) {
	log.Info("downloading raw data from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
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

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", outputPath, err)
	}

	log.Info("download complete: %s (%d bytes)", outputPath, written)
	return written, nil
}
