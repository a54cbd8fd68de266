package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/privacyscan/internal/report"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "privacyscan"

	// DefaultFormat is the report format used when --format is not given.
	DefaultFormat = string(report.FormatText)

	// DefaultConcurrency is the number of scans rescored at once by
	// "rescore --all". Scoring is CPU-light; the limit mostly bounds
	// contention on the single SQLite writer.
	DefaultConcurrency = 4

	// DefaultAddr is the listen address of "privacyscan serve". It binds to
	// loopback because the API has no authentication.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultCacheTTL bounds how long the HTTP server serves a cached score
	// before reloading it from the database.
	DefaultCacheTTL = 5 * time.Minute
)

// Config holds all runtime options for privacyscan.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is small.
type Config struct {
	// DBDir is the directory holding privacyscan.db.
	// Defaults to the XDG data directory (~/.local/share/privacyscan on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .privacyscan is searched in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File is the loaded configuration file. Nil when none was found.
	File *File

	// Format is the report format: text, json or markdown.
	Format string

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// Verbose enables debug logging and the score breakdown in reports.
	Verbose bool

	// Concurrency is the number of scans rescored concurrently.
	Concurrency int

	// Addr is the listen address of the HTTP server.
	Addr string

	// CacheTTL is how long the HTTP server caches a score.
	CacheTTL time.Duration
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DBDir:       XDGDataDir(),
		Format:      DefaultFormat,
		Concurrency: DefaultConcurrency,
		Addr:        DefaultAddr,
		CacheTTL:    DefaultCacheTTL,
	}
}

// XDGDataDir returns the XDG data directory for privacyscan.
// On Linux: ~/.local/share/privacyscan
// On macOS: ~/Library/Application Support/privacyscan
// On Windows: %LOCALAPPDATA%\privacyscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for privacyscan.
// On Linux: ~/.config/privacyscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for privacyscan.
// On Linux: ~/.cache/privacyscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return ErrEmptyDBDir
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Addr == "" {
		return ErrEmptyAddress
	}

	if c.File != nil {
		if err := c.File.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ReportFormat returns the parsed report format. Call Validate first.
func (c *Config) ReportFormat() report.Format {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return report.FormatText
	}
	return format
}

// Labeler returns the label thresholds from the configuration file, or the
// built-in thresholds when the file does not set them.
func (c *Config) Labeler() scoring.Thresholds {
	if c.File == nil || c.File.Labels == nil {
		return scoring.DefaultThresholds()
	}
	return *c.File.Labels
}

// RootDomainFor returns the configured root domain override for a scan URL.
// The second return value is false when no override applies.
func (c *Config) RootDomainFor(rawURL string) (string, bool) {
	if c.File == nil {
		return "", false
	}
	site := c.File.GetSiteConfig(rawURL)
	return site.RootDomain, site.RootDomain != ""
}
