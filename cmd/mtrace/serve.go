package main

import (
	"github.com/spf13/cobra"

	"mtracecli/internal/app"
	apperrors "mtracecli/internal/errors"
)

func newServeCmd(e *env) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Serve exposes the analyzer over HTTP:

  POST /api/v1/analyses   upload an export (raw body or multipart "file")
  POST /api/v1/decode     decode a single annotation blob
  GET  /api/health        health, readiness (/ready) and liveness (/live)
  GET  /api/version       build information
  GET  /metrics           Prometheus metrics

The server runs until SIGINT or SIGTERM and drains in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *e.cfg
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return apperrors.NewAppValidationError("port must be between 1 and 65535")
				}
				cfg.Server.Port = port
			}

			a, err := app.NewApplication(&cfg, e.logger)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
