package model

import (
	"encoding/json"
	"time"
)

// EvidenceKind identifies what an evidence record observed.
type EvidenceKind string

// Evidence kinds produced by the crawler.
const (
	KindTracker      EvidenceKind = "tracker"
	KindThirdParty   EvidenceKind = "thirdparty"
	KindCookie       EvidenceKind = "cookie"
	KindHeader       EvidenceKind = "header"
	KindInsecure     EvidenceKind = "insecure"
	KindPolicy       EvidenceKind = "policy"
	KindTLS          EvidenceKind = "tls"
	KindFingerprint  EvidenceKind = "fingerprint"
	KindMixedContent EvidenceKind = "mixed-content"
)

// KnownKinds lists every evidence kind the scoring rules understand.
var KnownKinds = []EvidenceKind{
	KindTracker,
	KindThirdParty,
	KindCookie,
	KindHeader,
	KindInsecure,
	KindPolicy,
	KindTLS,
	KindFingerprint,
	KindMixedContent,
}

// IsKnown reports whether k is one of KnownKinds.
func (k EvidenceKind) IsKnown() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// EvidenceRecord is one observed fact about a scanned site.
//
// Records are immutable once produced. The same real-world violation is
// usually observed on many crawled pages, so several records may describe
// one violation; the scoring engine collapses them.
//
// Details is kept as raw JSON because its shape depends on Kind and it is
// produced by a collaborator this package does not trust. Use Decode to
// obtain the typed, validated form.
type EvidenceRecord struct {
	// ID uniquely identifies the record.
	ID string `json:"id" yaml:"id"`

	// ScanID is the scan that produced the record.
	ScanID string `json:"scan_id" yaml:"scan_id"`

	// Kind selects the shape of Details.
	Kind EvidenceKind `json:"kind" yaml:"kind"`

	// Details is the kind-specific payload.
	Details json.RawMessage `json:"details,omitempty" yaml:"-"`

	// CreatedAt is when the crawler recorded the observation.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Decode returns the typed details of the record.
// It never fails: malformed payloads coerce to the zero value of the
// kind's details type, and unknown kinds yield UnknownDetails.
func (r EvidenceRecord) Decode() Details {
	return DecodeDetails(r.Kind, r.Details)
}
