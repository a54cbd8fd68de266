package model

import (
	"fmt"
	"strings"
)

// Severity represents how urgently an issue should be addressed.
//
// Severity is an ordered integer so that issues can be ranked with a plain
// comparison; the textual form is only used for display and serialization.
type Severity int

const (
	// SeverityInfo indicates informational issues with no direct privacy impact.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues, such as a missing privacy policy.
	SeverityLow

	// SeverityMedium indicates issues that weaken the site's posture,
	// such as missing security headers or many third-party domains.
	SeverityMedium

	// SeverityHigh indicates issues that expose visitors to tracking
	// or interception, such as trackers or mixed content.
	SeverityHigh

	// SeverityCritical indicates issues that require immediate attention.
	SeverityCritical
)

// severityNames maps severities to their lowercase serialized names.
var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Name returns the lowercase name used in JSON and in the database.
func (s Severity) Name() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the severity as its lowercase name.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a severity from its name (case-insensitive).
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name such as "high" or "CRITICAL".
func ParseSeverity(name string) (Severity, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for sev, n := range severityNames {
		if n == lower {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}
