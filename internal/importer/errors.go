package importer

import "errors"

var (
	// ErrUnknownFormat is returned for an input format other than json or yaml.
	ErrUnknownFormat = errors.New("unknown evidence format")

	// ErrEmptyBundle is returned when the input holds no evidence records.
	ErrEmptyBundle = errors.New("evidence bundle has no records")

	// ErrMissingKind is returned when a record has no kind.
	ErrMissingKind = errors.New("evidence record has no kind")
)
