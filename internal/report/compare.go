package report

import (
	"slices"
	"time"
)

// Snapshot is one scoring run as seen by a comparison.
type Snapshot struct {
	ScanID    string    `json:"scan_id"`
	Score     int       `json:"score"`
	Label     string    `json:"label"`
	Digest    string    `json:"digest"`
	IssueKeys []string  `json:"issue_keys"`
	Timestamp time.Time `json:"timestamp"`
}

// Comparison is the difference between two scoring runs of one URL.
type Comparison struct {
	URL      string   `json:"url"`
	Previous Snapshot `json:"previous"`
	Current  Snapshot `json:"current"`

	// Delta is Current.Score - Previous.Score.
	Delta int `json:"delta"`

	// NewIssues were raised by the current run only.
	NewIssues []string `json:"new_issues"`

	// ResolvedIssues were raised by the previous run only.
	ResolvedIssues []string `json:"resolved_issues"`
}

// NewComparison compares two runs of url.
func NewComparison(url string, previous, current Snapshot) *Comparison {
	return &Comparison{
		URL:            url,
		Previous:       previous,
		Current:        current,
		Delta:          current.Score - previous.Score,
		NewIssues:      difference(current.IssueKeys, previous.IssueKeys),
		ResolvedIssues: difference(previous.IssueKeys, current.IssueKeys),
	}
}

// Unchanged reports whether both runs produced the same result.
func (c *Comparison) Unchanged() bool {
	if c.Previous.Digest != "" && c.Previous.Digest == c.Current.Digest {
		return true
	}
	return c.Delta == 0 && len(c.NewIssues) == 0 && len(c.ResolvedIssues) == 0
}

// difference returns the keys of a that are not in b, in a's order.
// The result is never nil.
func difference(a, b []string) []string {
	out := make([]string, 0)
	for _, key := range a {
		if !slices.Contains(b, key) {
			out = append(out, key)
		}
	}
	return out
}
