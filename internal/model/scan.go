package model

import "time"

// ScanStatus is the lifecycle state of a scan record.
type ScanStatus string

// Scan states. A scan is pending until evidence has been scored, and
// failed when scoring could not run (for example, its evidence vanished).
const (
	ScanStatusPending ScanStatus = "pending"
	ScanStatusScored  ScanStatus = "scored"
	ScanStatusFailed  ScanStatus = "failed"
)

// Scan is one scan of a website.
type Scan struct {
	// ID uniquely identifies the scan.
	ID string `json:"id"`

	// URL is the normalized input the user asked to scan.
	URL string `json:"url"`

	// RootDomain is the registrable domain of URL (e.g. github.com for
	// www.github.com). It may be empty when the URL could not be parsed,
	// in which case every observed domain is treated as third-party.
	RootDomain string `json:"root_domain"`

	// Status is the lifecycle state.
	Status ScanStatus `json:"status"`

	// CreatedAt is when the scan was registered.
	CreatedAt time.Time `json:"created_at"`

	// ScoredAt is when the latest result was stored. Zero if never scored.
	ScoredAt time.Time `json:"scored_at,omitempty"`

	// ErrorMessage explains why the scan failed.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// ScanReport pairs a scan with its score result for rendering.
type ScanReport struct {
	Scan   Scan         `json:"scan"`
	Result *ScoreResult `json:"result"`

	// Digest is the result digest, used to detect changes between runs.
	Digest string `json:"digest,omitempty"`
}

// NewScanReport creates a report for the given scan and result.
func NewScanReport(scan Scan, result *ScoreResult, digest string) *ScanReport {
	return &ScanReport{
		Scan:   scan,
		Result: result,
		Digest: digest,
	}
}
