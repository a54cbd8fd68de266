package report

import "errors"

var (
	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrNoResult is returned when a report without a score result is written.
	ErrNoResult = errors.New("report has no score result")
)
