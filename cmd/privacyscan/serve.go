package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/config"
	"github.com/nao1215/privacyscan/internal/log"
	"github.com/nao1215/privacyscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored scans and scores over HTTP",
		Long: `Serve starts an HTTP API over the scan database.

Endpoints:
  GET  /healthz
  GET  /api/scans
  GET  /api/scans/{id}
  GET  /api/scans/{id}/score     (ETag is the result digest)
  POST /api/scans/{id}/rescore

The API has no authentication, so it listens on loopback by default.

Examples:
  privacyscan serve
  privacyscan serve --addr :8080 --cache-ttl 1m`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long a score stays cached (0 keeps it until rescored)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.cfg.Addr = flagString(cmd, "addr")
	if ttl, err := cmd.Flags().GetDuration("cache-ttl"); err == nil {
		a.cfg.CacheTTL = ttl
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), a.cfg.Verbose)
	srv := server.New(store, server.Config{
		ListenAddr: a.cfg.Addr,
		CacheTTL:   a.cfg.CacheTTL,
		Engine:     a.engine(),
		Logger:     logger,
		Version:    getVersion(),
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", store.Path(), a.cfg.Addr)
	return srv.Run(ctx)
}
