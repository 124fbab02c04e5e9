package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cineanalyst/cineanalyst/config"
	"github.com/cineanalyst/cineanalyst/log"
)

var (
	cfgFile string
	cfg     *config.Config
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "cineanalyst",
	Short: "CineAnalyst - movie analysis assistant",
	Long: `CineAnalyst is a retrieval-augmented movie analysis assistant. It routes
each question to a semantic or a relational movie search, feeds the retrieved
context to a fine-tuned model served by vLLM, and answers over HTTP or an
interactive chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.SetLevel(cfg.Log.Level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cineanalyst version %s\n", version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path (default: ./cineanalyst.yaml or ~/.cineanalyst/cineanalyst.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(trainConfigCmd)
	rootCmd.AddCommand(chatCmd)
}
