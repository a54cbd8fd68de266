package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file does
	// not exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrScanNotFound is returned when a scan ID does not exist.
	ErrScanNotFound = errors.New("scan not found")

	// ErrResultNotFound is returned when a scan has not been scored yet.
	ErrResultNotFound = errors.New("score result not found")

	// ErrHistoryNotFound is returned when a score history entry does not exist.
	ErrHistoryNotFound = errors.New("score history entry not found")

	// ErrInvalidURL is returned when a scan URL cannot be normalized.
	ErrInvalidURL = errors.New("invalid scan URL")
)
