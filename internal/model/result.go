package model

// ScoreResult is the complete output of scoring one scan.
//
// A ScoreResult is recomputed from scratch on every scoring run and is never
// patched in place, so two runs over the same evidence and root domain
// produce identical values.
type ScoreResult struct {
	// Score is the privacy score, always within [0, 100].
	Score int `json:"score"`

	// Label is the qualitative band derived from Score.
	Label string `json:"label"`

	// Explanations records every penalty and bonus that was applied,
	// in rule order. They document the arithmetic and never drive it.
	Explanations []Explanation `json:"explanations"`

	// Issues are the human-facing problems, ordered by severity
	// (most severe first) and then by SortWeight.
	Issues []Issue `json:"issues"`

	// Summary is a one-line description of the triggered categories.
	Summary string `json:"summary"`

	// Meta exposes the raw facts behind the score for reuse by renderers.
	Meta Meta `json:"meta"`
}

// Explanation is one audit entry of the score calculation.
type Explanation struct {
	// EvidenceID is the evidence record that triggered the rule.
	// It is empty for rules triggered by an absence, such as a missing policy.
	EvidenceID string `json:"evidence_id"`

	// Points is the signed score change: negative for penalties.
	Points int `json:"points"`

	// Reason describes the rule in plain language.
	Reason string `json:"reason"`
}

// Issue is a presentation-facing problem with remediation guidance.
type Issue struct {
	Key          string   `json:"key"`
	Severity     Severity `json:"severity"`
	Category     string   `json:"category"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	HowToFix     string   `json:"how_to_fix,omitempty"`
	WhyItMatters string   `json:"why_it_matters,omitempty"`
	References   []string `json:"references"`
	SortWeight   int      `json:"sort_weight"`
}

// Meta holds the facts the score was derived from.
// Domain and header lists are sorted so that Meta is stable across runs.
type Meta struct {
	TrackerDomains      []string `json:"tracker_domains"`
	ThirdPartyDomains   []string `json:"third_party_domains"`
	MissingHeaders      []string `json:"missing_headers"`
	CookieIssueCount    int      `json:"cookie_issue_count"`
	PolicyFound         bool     `json:"policy_found"`
	TLSGrade            string   `json:"tls_grade,omitempty"`
	FingerprintDetected bool     `json:"fingerprint_detected"`
	FingerprintSignals  int      `json:"fingerprint_signals"`
	MixedContent        bool     `json:"mixed_content"`
	InsecureResources   []string `json:"insecure_resources"`
	EvidenceCount       int      `json:"evidence_count"`
	UniqueEvidenceCount int      `json:"unique_evidence_count"`
}

// IssuesBySeverity returns the issues with the given severity, in result order.
func (r *ScoreResult) IssuesBySeverity(severity Severity) []Issue {
	var result []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			result = append(result, issue)
		}
	}
	return result
}

// CountBySeverity returns the number of issues per severity.
func (r *ScoreResult) CountBySeverity() map[Severity]int {
	counts := map[Severity]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
		SeverityInfo:     0,
	}
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// HasIssues returns true if any issue was raised.
func (r *ScoreResult) HasIssues() bool {
	return len(r.Issues) > 0
}
