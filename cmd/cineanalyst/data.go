package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cineanalyst/cineanalyst/data"
	"github.com/cineanalyst/cineanalyst/training"
)

var (
	crawlURL    string
	crawlOutput string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Download the raw movie dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		output := crawlOutput
		if output == "" {
			output = cfg.Data.MoviesCSV
		}

		_, err := data.NewCrawler(nil).Download(cmd.Context(), crawlURL, output)
		return err
	},
}

var (
	preprocessInput  string
	preprocessOutput string
	preprocessSample int
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert the raw CSV into chat-format training examples",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := preprocessInput
		if input == "" {
			input = cfg.Data.MoviesCSV
		}
		output := preprocessOutput
		if output == "" {
			output = cfg.Data.TrainingFile
		}

		written, err := data.Preprocess(input, output, preprocessSample)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d training examples to %s\n", written, output)
		return nil
	},
}

var ingestLimit int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the movie dataset into the relational movie graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := &app{}
		defer a.close()

		graph, err := buildMovieGraph(cmd.Context(), cfg, a)
		if err != nil {
			return err
		}

		ingestor, err := data.NewIngestor(data.IngestorOptions{
			Graph: graph,
			Limit: ingestLimit,
		})
		if err != nil {
			return err
		}

		count, err := ingestor.Run(cmd.Context(), cfg.Data.MoviesCSV, cfg.Data.CreditsCSV)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d movies into the %s movie graph\n", count, cfg.Relational.Driver)
		return nil
	},
}

var trainConfigOutput string

var trainConfigCmd = &cobra.Command{
	Use:   "train-config",
	Short: "Write the LoRA fine-tuning job file for the GPU trainer",
	RunE: func(cmd *cobra.Command, args []string) error {
		job := training.NewJob(cfg.Data.TrainingFile)
		if err := job.WriteYAML(trainConfigOutput); err != nil {
			return err
		}
		fmt.Printf("Wrote training job to %s\n", trainConfigOutput)
		return nil
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlURL, "url", data.DefaultMoviesURL, "dataset URL")
	crawlCmd.Flags().StringVar(&crawlOutput, "output", "", "output path (default: configured movies CSV path)")

	preprocessCmd.Flags().StringVar(&preprocessInput, "input", "", "input CSV path (default: configured movies CSV path)")
	preprocessCmd.Flags().StringVar(&preprocessOutput, "output", "", "output JSONL path (default: configured training file path)")
	preprocessCmd.Flags().IntVar(&preprocessSample, "sample", 0, "limit the number of source rows (0 = all)")

	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "limit the number of ingested movies (0 = default sample)")

	trainConfigCmd.Flags().StringVar(&trainConfigOutput, "output", "train_job.yaml", "output path for the job file")
}
