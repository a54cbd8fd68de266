package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidFormat is returned for an unknown report format name.
	ErrInvalidFormat = errors.New("invalid report format: must be text, json or markdown")

	// ErrEmptyAddress is returned when the HTTP listen address is empty.
	ErrEmptyAddress = errors.New("invalid listen address: must not be empty")

	// ErrEmptyDBDir is returned when no database directory is configured.
	ErrEmptyDBDir = errors.New("invalid database directory: must not be empty")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidSiteRoot is returned when a site's rootDomain override is
	// not a registrable domain.
	ErrInvalidSiteRoot = errors.New("invalid site rootDomain")
)
