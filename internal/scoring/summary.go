package scoring

import (
	"fmt"
	"strings"
)

// NoRisksSummary is the summary used when no category was triggered.
const NoRisksSummary = "No major privacy risks detected"

// summarize joins one phrase per triggered category, in rule order.
func summarize(f *facts) string {
	var phrases []string

	if n := f.trackers.len(); n > 0 {
		phrases = append(phrases, fmt.Sprintf("Found %d tracker domain(s).", n))
	}
	if n := f.thirdParties.len(); n > 0 {
		phrases = append(phrases, fmt.Sprintf("Contacts %d third-party domains.", n))
	}
	if n := f.insecure.len(); n > 0 {
		phrases = append(phrases, fmt.Sprintf("Loads %d insecure resource(s) over HTTP.", n))
	}
	if n := f.headers.len(); n > 0 {
		phrases = append(phrases, fmt.Sprintf("Missing %d security header(s).", n))
	}
	if n := f.cookies.len(); n > 0 {
		phrases = append(phrases, fmt.Sprintf("%d cookie(s) lack secure flags.", n))
	}
	if !f.policyFound {
		phrases = append(phrases, "No privacy policy detected.")
	}
	if f.weakTLS() {
		phrases = append(phrases, fmt.Sprintf("Weak TLS configuration (grade %s).", f.tlsGrade))
	}
	if f.fingerprintDetected() {
		phrases = append(phrases, fmt.Sprintf("Browser fingerprinting detected (%d signals).", f.fingerprintSignals))
	}

	if len(phrases) == 0 {
		return NoRisksSummary
	}
	return strings.Join(phrases, " ")
}
