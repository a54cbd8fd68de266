package scoring

import "fmt"

// Baseline is the score of a site before any rule applies.
const Baseline = 100

// Rule table constants. Penalties are positive magnitudes; the sign is
// applied when an adjustment is emitted.
const (
	trackerPenalty            = 5
	trackerCap                = 40
	trackerFingerprintPenalty = 5

	thirdPartyPenalty = 2
	thirdPartyCap     = 20

	insecurePenalty = 10
	insecureCap     = 20

	headerPenalty = 3

	cookiePenalty = 2
	cookieCap     = 10

	missingPolicyPenalty = 5

	fingerprintPenalty         = 5
	fingerprintSignalThreshold = 3

	tlsAPlusBonus   = 5
	tlsABonus       = 3
	noTrackersBonus = 5
	policyBonus     = 3
)

// tlsPenalties maps TLS grades to their penalty. Grades not listed,
// including A+, A and B, cost nothing.
var tlsPenalties = map[string]int{
	"C": 3,
	"D": 7,
	"F": 12,
}

// Categories of the rule table. They are also used as explanation
// prefixes and as issue categories.
const (
	CategoryTrackers     = "trackers"
	CategoryThirdParty   = "third_party"
	CategoryInsecure     = "insecure"
	CategoryHeaders      = "headers"
	CategoryCookies      = "cookies"
	CategoryPolicy       = "policy"
	CategoryTLS          = "tls"
	CategoryFingerprints = "fingerprinting"
)

// Adjustment is one application of a rule: a signed change to the score
// and the evidence that caused it.
type Adjustment struct {
	Category   string
	Points     int
	EvidenceID string
	Reason     string
}

// Rule evaluates one row of the rule table against the facts of a scan.
// A rule returns no adjustments when it does not apply.
type Rule struct {
	Category string
	Bonus    bool
	Evaluate func(f *facts) []Adjustment
}

// rules is the rule table, penalties first and bonuses after. The order
// only affects the order of explanations; the score is a plain sum.
var rules = []Rule{
	{Category: CategoryTrackers, Evaluate: trackerRule},
	{Category: CategoryTrackers, Evaluate: trackerFingerprintRule},
	{Category: CategoryThirdParty, Evaluate: thirdPartyRule},
	{Category: CategoryInsecure, Evaluate: insecureRule},
	{Category: CategoryHeaders, Evaluate: headerRule},
	{Category: CategoryCookies, Evaluate: cookieRule},
	{Category: CategoryPolicy, Evaluate: missingPolicyRule},
	{Category: CategoryTLS, Evaluate: tlsPenaltyRule},
	{Category: CategoryFingerprints, Evaluate: fingerprintRule},
	{Category: CategoryTLS, Bonus: true, Evaluate: tlsBonusRule},
	{Category: CategoryTrackers, Bonus: true, Evaluate: noTrackersRule},
	{Category: CategoryPolicy, Bonus: true, Evaluate: policyPresentRule},
}

// evaluate folds the rule table once over the facts.
func evaluate(table []Rule, f *facts) (int, []Adjustment) {
	var adjustments []Adjustment
	total := Baseline
	for _, rule := range table {
		for _, adj := range rule.Evaluate(f) {
			total += adj.Points
			adjustments = append(adjustments, adj)
		}
	}
	return clamp(total, 0, 100), adjustments
}

// capped returns min(count*unit, limit).
func capped(count, unit, limit int) int {
	return min(count*unit, limit)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func trackerRule(f *facts) []Adjustment {
	n := f.trackers.len()
	if n == 0 {
		return nil
	}
	points := capped(n, trackerPenalty, trackerCap)
	return []Adjustment{{
		Category:   CategoryTrackers,
		Points:     -points,
		EvidenceID: f.trackers.firstID(),
		Reason:     fmt.Sprintf("%s (-%d each, capped at %d)", plural(n, "unique tracker domain", "unique tracker domains"), trackerPenalty, trackerCap),
	}}
}

func trackerFingerprintRule(f *facts) []Adjustment {
	if !f.trackerFingerprinting {
		return nil
	}
	return []Adjustment{{
		Category:   CategoryTrackers,
		Points:     -trackerFingerprintPenalty,
		EvidenceID: f.trackerFingerprintID,
		Reason:     "tracker flagged for fingerprinting",
	}}
}

func thirdPartyRule(f *facts) []Adjustment {
	n := f.thirdParties.len()
	if n == 0 {
		return nil
	}
	points := capped(n, thirdPartyPenalty, thirdPartyCap)
	return []Adjustment{{
		Category:   CategoryThirdParty,
		Points:     -points,
		EvidenceID: f.thirdParties.firstID(),
		Reason:     fmt.Sprintf("%s (-%d each, capped at %d)", plural(n, "third-party domain", "third-party domains"), thirdPartyPenalty, thirdPartyCap),
	}}
}

func insecureRule(f *facts) []Adjustment {
	n := f.insecure.len()
	if n == 0 {
		return nil
	}
	points := capped(n, insecurePenalty, insecureCap)
	return []Adjustment{{
		Category:   CategoryInsecure,
		Points:     -points,
		EvidenceID: f.insecure.firstID(),
		Reason:     fmt.Sprintf("%s loaded over HTTP (-%d each, capped at %d)", plural(n, "insecure resource", "insecure resources"), insecurePenalty, insecureCap),
	}}
}

// headerRule emits one uncapped penalty per distinct missing header.
func headerRule(f *facts) []Adjustment {
	names := f.headers.sorted()
	adjustments := make([]Adjustment, 0, len(names))
	for _, name := range names {
		adjustments = append(adjustments, Adjustment{
			Category:   CategoryHeaders,
			Points:     -headerPenalty,
			EvidenceID: f.headers.id(name),
			Reason:     "missing security header: " + name,
		})
	}
	return adjustments
}

func cookieRule(f *facts) []Adjustment {
	n := f.cookies.len()
	if n == 0 {
		return nil
	}
	points := capped(n, cookiePenalty, cookieCap)
	return []Adjustment{{
		Category:   CategoryCookies,
		Points:     -points,
		EvidenceID: f.cookies.firstID(),
		Reason:     fmt.Sprintf("%s with flag issues (-%d each, capped at %d)", plural(n, "cookie", "cookies"), cookiePenalty, cookieCap),
	}}
}

func missingPolicyRule(f *facts) []Adjustment {
	if f.policyFound {
		return nil
	}
	return []Adjustment{{
		Category: CategoryPolicy,
		Points:   -missingPolicyPenalty,
		Reason:   "no privacy policy found",
	}}
}

func tlsPenaltyRule(f *facts) []Adjustment {
	points, ok := tlsPenalties[f.tlsGrade]
	if !ok {
		return nil
	}
	return []Adjustment{{
		Category:   CategoryTLS,
		Points:     -points,
		EvidenceID: f.tlsID,
		Reason:     "TLS grade " + f.tlsGrade,
	}}
}

func fingerprintRule(f *facts) []Adjustment {
	if !f.fingerprintDetected() {
		return nil
	}
	return []Adjustment{{
		Category:   CategoryFingerprints,
		Points:     -fingerprintPenalty,
		EvidenceID: f.fingerprintID,
		Reason:     fmt.Sprintf("fingerprinting heuristics triggered (%d distinct signals)", f.fingerprintSignals),
	}}
}

func tlsBonusRule(f *facts) []Adjustment {
	var points int
	switch f.tlsGrade {
	case "A+":
		points = tlsAPlusBonus
	case "A":
		points = tlsABonus
	default:
		return nil
	}
	return []Adjustment{{
		Category:   CategoryTLS,
		Points:     points,
		EvidenceID: f.tlsID,
		Reason:     "TLS grade " + f.tlsGrade + " bonus",
	}}
}

// noTrackersRule rewards a crawl that observed the site but found no
// tracker domains. An empty evidence set means nothing was observed, which
// is not proof of a tracker-free site, so it earns no bonus.
func noTrackersRule(f *facts) []Adjustment {
	if f.trackers.len() > 0 || f.evidenceCount == 0 {
		return nil
	}
	return []Adjustment{{
		Category: CategoryTrackers,
		Points:   noTrackersBonus,
		Reason:   "no tracker domains detected",
	}}
}

func policyPresentRule(f *facts) []Adjustment {
	if !f.policyFound {
		return nil
	}
	return []Adjustment{{
		Category:   CategoryPolicy,
		Points:     policyBonus,
		EvidenceID: f.policyID,
		Reason:     "privacy policy present",
	}}
}

// plural formats n with the singular or plural noun.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
