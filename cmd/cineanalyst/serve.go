package main

import (
	"github.com/spf13/cobra"

	"github.com/cineanalyst/cineanalyst/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		srv := server.New(a.assistant, server.Options{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		})
		return srv.Run()
	},
}
