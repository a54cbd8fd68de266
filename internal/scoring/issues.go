package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/privacyscan/internal/model"
)

// Issue keys.
const (
	IssueTrackers      = "privacy.trackers"
	IssueFingerprints  = "privacy.fingerprinting"
	IssueMixedContent  = "security.mixed_content"
	IssueTLS           = "security.tls"
	IssueThirdParties  = "privacy.third_parties"
	IssueHeaders       = "security.headers"
	IssueCookies       = "security.cookies"
	IssueMissingPolicy = "compliance.policy"
)

// thirdPartyIssueThreshold is the number of third-party domains above which
// an issue is raised. A handful of CDNs and font hosts is normal; the score
// still pays for every one of them.
const thirdPartyIssueThreshold = 5

// issueTemplate holds the fixed metadata of an issue category.
type issueTemplate struct {
	Severity     model.Severity
	Category     string
	Title        string
	HowToFix     string
	WhyItMatters string
	References   []string
	SortWeight   int
}

// issueCatalog maps issue keys to their metadata.
//
// Severity and SortWeight are fixed per key so that the issue order only
// depends on which categories were triggered, never on input order.
var issueCatalog = map[string]issueTemplate{
	IssueTrackers: {
		Severity:     model.SeverityHigh,
		Category:     "privacy",
		Title:        "Third-party trackers detected",
		HowToFix:     "Remove tracking scripts that are not essential, or load them only after the visitor consents.",
		WhyItMatters: "Trackers build cross-site profiles of your visitors without their knowledge.",
		References:   []string{"https://gdpr.eu/cookies/"},
		SortWeight:   10,
	},
	IssueFingerprints: {
		Severity:     model.SeverityHigh,
		Category:     "privacy",
		Title:        "Browser fingerprinting detected",
		HowToFix:     "Remove scripts that probe canvas, WebGL, audio or font APIs to identify browsers.",
		WhyItMatters: "Fingerprinting identifies visitors even when they clear cookies or browse privately.",
		References:   []string{"https://www.w3.org/TR/fingerprinting-guidance/"},
		SortWeight:   20,
	},
	IssueMixedContent: {
		Severity:     model.SeverityHigh,
		Category:     "security",
		Title:        "Resources loaded over HTTP",
		HowToFix:     "Serve every script, stylesheet and image over HTTPS and add the upgrade-insecure-requests directive.",
		WhyItMatters: "Plain HTTP resources can be read or modified by anyone on the network path.",
		References:   []string{"https://developer.mozilla.org/en-US/docs/Web/Security/Mixed_content"},
		SortWeight:   30,
	},
	IssueTLS: {
		Severity:     model.SeverityHigh,
		Category:     "security",
		Title:        "Weak TLS configuration",
		HowToFix:     "Disable legacy protocol versions and weak cipher suites, and renew the certificate chain if needed.",
		WhyItMatters: "A weak TLS setup lets attackers downgrade or intercept encrypted connections.",
		References:   []string{"https://ssl-config.mozilla.org/"},
		SortWeight:   40,
	},
	IssueThirdParties: {
		Severity:     model.SeverityMedium,
		Category:     "privacy",
		Title:        "Many third-party domains contacted",
		HowToFix:     "Self-host fonts and libraries, and drop third-party embeds that are not needed.",
		WhyItMatters: "Every third-party request shares your visitor's IP address and browsing context with another company.",
		References:   []string{"https://developer.mozilla.org/en-US/docs/Web/Privacy/Third-party_cookies"},
		SortWeight:   50,
	},
	IssueHeaders: {
		Severity:     model.SeverityMedium,
		Category:     "security",
		Title:        "Missing security headers",
		HowToFix:     "Send the missing headers from your web server or CDN configuration.",
		WhyItMatters: "Security headers instruct browsers to block clickjacking, content sniffing and script injection.",
		References:   []string{"https://owasp.org/www-project-secure-headers/"},
		SortWeight:   60,
	},
	IssueCookies: {
		Severity:     model.SeverityMedium,
		Category:     "security",
		Title:        "Cookies without secure flags",
		HowToFix:     "Set the Secure, HttpOnly and SameSite attributes on every cookie that does not need to be read by scripts.",
		WhyItMatters: "Cookies without these flags can leak over plain HTTP or be stolen by injected scripts.",
		References:   []string{"https://developer.mozilla.org/en-US/docs/Web/HTTP/Cookies"},
		SortWeight:   70,
	},
	IssueMissingPolicy: {
		Severity:     model.SeverityLow,
		Category:     "compliance",
		Title:        "No privacy policy found",
		HowToFix:     "Publish a privacy policy and link to it from every page, usually in the footer.",
		WhyItMatters: "Most privacy laws require you to tell visitors what data you collect and why.",
		References:   []string{"https://gdpr.eu/privacy-notice/"},
		SortWeight:   80,
	},
}

// newIssue builds an issue from the catalog. References are copied so that
// callers cannot mutate the catalog through a result.
func newIssue(key, summary string) model.Issue {
	tmpl := issueCatalog[key]
	return model.Issue{
		Key:          key,
		Severity:     tmpl.Severity,
		Category:     tmpl.Category,
		Title:        tmpl.Title,
		Summary:      summary,
		HowToFix:     tmpl.HowToFix,
		WhyItMatters: tmpl.WhyItMatters,
		References:   slices.Clone(tmpl.References),
		SortWeight:   tmpl.SortWeight,
	}
}

// synthesizeIssues returns one issue per triggered category, sorted.
func synthesizeIssues(f *facts) []model.Issue {
	issues := make([]model.Issue, 0, len(issueCatalog))

	if n := f.trackers.len(); n > 0 {
		issues = append(issues, newIssue(IssueTrackers,
			fmt.Sprintf("Found %s: %s.", plural(n, "tracker domain", "tracker domains"), strings.Join(f.trackers.sorted(), ", "))))
	}
	if n := f.thirdParties.len(); n > thirdPartyIssueThreshold {
		issues = append(issues, newIssue(IssueThirdParties,
			fmt.Sprintf("The site contacts %d third-party domains.", n)))
	}
	if n := f.headers.len(); n > 0 {
		issues = append(issues, newIssue(IssueHeaders,
			"Missing: "+strings.Join(f.headers.sorted(), ", ")+"."))
	}
	if n := f.cookies.len(); n > 0 {
		issues = append(issues, newIssue(IssueCookies,
			fmt.Sprintf("%s missing Secure, HttpOnly or SameSite attributes.", plural(n, "cookie is", "cookies are"))))
	}
	if f.weakTLS() {
		issues = append(issues, newIssue(IssueTLS,
			fmt.Sprintf("The TLS configuration is graded %s.", f.tlsGrade)))
	}
	if f.fingerprintDetected() {
		issues = append(issues, newIssue(IssueFingerprints,
			fmt.Sprintf("%d distinct fingerprinting signals were observed.", f.fingerprintSignals)))
	}
	if f.mixedContent() {
		issues = append(issues, newIssue(IssueMixedContent,
			fmt.Sprintf("%s loaded over plain HTTP.", plural(f.insecure.len(), "resource is", "resources are"))))
	}
	if !f.policyFound {
		issues = append(issues, newIssue(IssueMissingPolicy,
			"No link to a privacy policy was found on the crawled pages."))
	}

	sortIssues(issues)
	return issues
}

// sortIssues orders issues by severity (most severe first), then by
// SortWeight ascending.
func sortIssues(issues []model.Issue) {
	slices.SortStableFunc(issues, func(a, b model.Issue) int {
		if a.Severity != b.Severity {
			return int(b.Severity) - int(a.Severity)
		}
		return a.SortWeight - b.SortWeight
	})
}
