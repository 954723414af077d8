package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"xmlsheet/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion service",
	Long: `Start the HTTP service. Configuration comes from XMLSHEET_*
environment variables, optionally merged with a config.yaml file in the
working directory. The server runs until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApplication()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return application.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
