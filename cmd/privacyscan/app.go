package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/config"
	"github.com/nao1215/privacyscan/internal/database"
	"github.com/nao1215/privacyscan/internal/log"
	"github.com/nao1215/privacyscan/internal/report"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// app holds what a command needs after flags are parsed: the validated
// configuration, a logger and, once opened, the store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *database.Store
}

// flagString returns a string flag, or "" when cmd does not define it.
// Subcommands built on their own (as in tests) lack the root's persistent flags.
func flagString(cmd *cobra.Command, name string) string {
	if cmd.Flags().Lookup(name) == nil {
		return ""
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// flagBool returns a bool flag, or false when cmd does not define it.
func flagBool(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Lookup(name) == nil {
		return false
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// buildConfig creates a Config from cobra command flags and the
// configuration file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.Verbose = flagBool(cmd, "verbose")
	if dir := flagString(cmd, "db-dir"); dir != "" {
		cfg.DBDir = dir
	}
	cfg.ConfigFilePath = flagString(cmd, "config")
	if format := flagString(cmd, "format"); format != "" {
		cfg.Format = format
	}
	cfg.ReportFile = flagString(cmd, "output")

	if err := cfg.Load(); err != nil {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("failed to load config file %s: %w", cfg.ConfigFilePath, err)
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return cfg, nil
}

// newApp builds and validates the configuration and sets up logging.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose),
	}, nil
}

// openStore opens the database in the configured directory.
func (a *app) openStore() (*database.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := database.Open(a.cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.logger.Debug("database opened", "path", store.Path())
	a.store = store
	return store, nil
}

// close releases the store, if it was opened.
func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}

// engine returns a scoring engine using the configured label thresholds.
func (a *app) engine() *scoring.Engine {
	return scoring.NewEngine(
		scoring.WithLabeler(a.cfg.Labeler()),
		scoring.WithLogger(a.logger),
	)
}

// rootDomainFor returns the root domain override for rawURL, or "".
func (a *app) rootDomainFor(rawURL string) string {
	root, _ := a.cfg.RootDomainFor(rawURL)
	return root
}

// writeReport renders with the configured writer to stdout or the report file.
func (a *app) writeReport(cmd *cobra.Command, write func(report.Writer) error) error {
	out, closeOut, err := a.output(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := report.New(a.cfg.ReportFormat(), out, report.Options{
		Verbose: a.cfg.Verbose,
		Version: getVersion(),
	})
	if err != nil {
		return err
	}
	return write(w)
}

// output returns the report destination. Report files are created with
// owner-only permissions because reports name the cookies a site sets.
func (a *app) output(cmd *cobra.Command) (io.Writer, func(), error) {
	if a.cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(a.cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(a.cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			a.logger.Warn("failed to close report file", "path", a.cfg.ReportFile, "error", err)
		}
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// addReportFlags adds the flags of commands that render a report.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", config.DefaultFormat,
		"Report format: text, json or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}
