package pipeline

import "errors"

var (
	// ErrScanNotLoaded is returned by ScoreStep when no step loaded the scan.
	ErrScanNotLoaded = errors.New("scan not loaded")

	// ErrNotScored is returned by PersistStep when no step produced a result.
	ErrNotScored = errors.New("job has no score result")
)
