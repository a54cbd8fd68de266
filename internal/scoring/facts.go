package scoring

import (
	"slices"
	"strings"

	"github.com/nao1215/privacyscan/internal/domain"
	"github.com/nao1215/privacyscan/internal/model"
)

// facts are the per-category aggregates the rules and issues are derived from.
type facts struct {
	// evidenceCount is the number of records before deduplication.
	evidenceCount int
	// uniqueCount is the number of records after deduplication.
	uniqueCount int

	trackers              *idSet
	trackerFingerprinting bool
	trackerFingerprintID  string
	thirdParties          *idSet
	insecure              *idSet
	headers               *idSet
	cookies               *idSet

	policyFound bool
	policyID    string

	tlsGrade string
	tlsID    string

	// fingerprintSignals is the distinct signal count taken before dedupe.
	fingerprintSignals int
	fingerprintID      string
}

// rawFacts are taken from the observations before dedupe, because dedupe
// keeps one record per bucket and would drop them.
type rawFacts struct {
	fingerprintSignals    int
	trackerFingerprinting bool
	trackerFingerprintID  string
}

// collectRawFacts scans every observation, duplicates included.
func collectRawFacts(obs []observation) rawFacts {
	raw := rawFacts{fingerprintSignals: countFingerprintSignals(obs)}
	raw.trackerFingerprintID, raw.trackerFingerprinting = fingerprintingTracker(obs)
	return raw
}

// collectFacts aggregates deduplicated observations.
func collectFacts(unique []observation, classifier *domain.Classifier, evidenceCount int, raw rawFacts) *facts {
	f := &facts{
		evidenceCount:         evidenceCount,
		uniqueCount:           len(unique),
		trackers:              newIDSet(),
		thirdParties:          newIDSet(),
		insecure:              newIDSet(),
		headers:               newIDSet(),
		cookies:               newIDSet(),
		fingerprintSignals:    raw.fingerprintSignals,
		trackerFingerprinting: raw.trackerFingerprinting,
		trackerFingerprintID:  raw.trackerFingerprintID,
	}

	for _, o := range unique {
		id := o.record.ID

		switch d := o.details.(type) {
		case model.TrackerDetails:
			// Trackers are third-party by definition; the first-party
			// classifier does not apply to them.
			if d.Domain != "" {
				f.trackers.add(d.Domain, id)
			}
		case model.ThirdPartyDetails:
			if d.Domain != "" && !classifier.IsFirstParty(d.Domain) {
				f.thirdParties.add(d.Domain, id)
			}
		case model.ResourceDetails:
			if isPlainHTTP(d.URL) {
				f.insecure.add(d.URL, id)
			}
		case model.HeaderDetails:
			if d.Name != "" {
				f.headers.add(d.Name, id)
			}
		case model.CookieDetails:
			f.cookies.add(d.Name, id)
		case model.PolicyDetails:
			if !f.policyFound {
				f.policyFound = true
				f.policyID = id
			}
		case model.TLSDetails:
			if f.tlsID == "" {
				f.tlsGrade = d.Grade
				f.tlsID = id
			}
		case model.FingerprintDetails:
			if f.fingerprintID == "" {
				f.fingerprintID = id
			}
		}
	}

	return f
}

// fingerprintDetected reports whether enough distinct signals were seen.
func (f *facts) fingerprintDetected() bool {
	return f.fingerprintSignals >= fingerprintSignalThreshold
}

// mixedContent reports whether any resource was loaded over plain HTTP.
func (f *facts) mixedContent() bool {
	return f.insecure.len() > 0
}

// weakTLS reports whether the TLS grade warrants an issue.
func (f *facts) weakTLS() bool {
	switch f.tlsGrade {
	case "C", "D", "F":
		return true
	}
	return false
}

// isPlainHTTP reports whether rawURL is non-empty and uses the http scheme.
func isPlainHTTP(rawURL string) bool {
	return rawURL != "" && strings.HasPrefix(strings.ToLower(rawURL), "http://")
}

// idSet is an insertion-ordered set of keys, each remembering the ID of the
// evidence record that first introduced it.
type idSet struct {
	ids  map[string]string
	keys []string
}

func newIDSet() *idSet {
	return &idSet{ids: make(map[string]string)}
}

// add inserts key if absent.
func (s *idSet) add(key, evidenceID string) {
	if _, ok := s.ids[key]; ok {
		return
	}
	s.ids[key] = evidenceID
	s.keys = append(s.keys, key)
}

func (s *idSet) len() int {
	return len(s.keys)
}

// sorted returns the keys in lexical order. The result is never nil so
// that it serializes as an empty JSON array.
func (s *idSet) sorted() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	slices.Sort(out)
	return out
}

// firstID returns the evidence ID of the lexically smallest key.
func (s *idSet) firstID() string {
	if len(s.keys) == 0 {
		return ""
	}
	return s.ids[slices.Min(s.keys)]
}

// id returns the evidence ID recorded for key.
func (s *idSet) id(key string) string {
	return s.ids[key]
}
