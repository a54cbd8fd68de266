package scoring

import (
	"strconv"

	"github.com/nao1215/privacyscan/internal/model"
)

// Shared deduplication keys. Policy presence, the TLS grade and the
// fingerprinting verdict are single facts per scan, so every record of
// those kinds lands in one bucket.
const (
	keyFingerprint = "fingerprint"
	keyPolicy      = "policy"
	keyTLS         = "tls"
)

// observation is an evidence record together with its decoded details.
type observation struct {
	record  model.EvidenceRecord
	details model.Details
}

// decodeAll decodes every record once.
func decodeAll(records []model.EvidenceRecord) []observation {
	obs := make([]observation, len(records))
	for i, r := range records {
		obs[i] = observation{record: r, details: r.Decode()}
	}
	return obs
}

// Key returns the deduplication key of a record: the identity of the
// violation it describes rather than of the observation itself.
func Key(record model.EvidenceRecord) string {
	return dedupKey(record, record.Decode())
}

// dedupKey derives the key from already decoded details.
// Records of unrecognized kinds get a per-record key so that they are
// never silently merged.
func dedupKey(record model.EvidenceRecord, details model.Details) string {
	switch d := details.(type) {
	case model.HeaderDetails:
		return "header:" + d.Name
	case model.ThirdPartyDetails:
		return "thirdparty:" + d.Domain
	case model.TrackerDetails:
		return "tracker:" + d.Domain
	case model.ResourceDetails:
		return string(d.Kind()) + ":" + d.URL
	case model.CookieDetails:
		return "cookie:" + d.Name
	case model.FingerprintDetails:
		return keyFingerprint
	case model.PolicyDetails:
		return keyPolicy
	case model.TLSDetails:
		return keyTLS
	default:
		return perRecordKey(record)
	}
}

// perRecordKey is the fallback key for records of unknown kinds.
func perRecordKey(record model.EvidenceRecord) string {
	return string(record.Kind) + ":" + record.ID
}

// Dedupe returns records with at most one record per deduplication key,
// keeping the first occurrence of each key in input order.
func Dedupe(records []model.EvidenceRecord) []model.EvidenceRecord {
	unique := dedupe(decodeAll(records))
	out := make([]model.EvidenceRecord, len(unique))
	for i, o := range unique {
		out[i] = o.record
	}
	return out
}

// dedupe is an insert-if-absent ordered map over observations.
func dedupe(obs []observation) []observation {
	seen := make(map[string]struct{}, len(obs))
	out := make([]observation, 0, len(obs))
	for i, o := range obs {
		key := dedupKey(o.record, o.details)
		if _, isUnknown := o.details.(model.UnknownDetails); isUnknown && o.record.ID == "" {
			key += "#" + strconv.Itoa(i)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}

// countFingerprintSignals counts distinct fingerprinting signals across the
// raw records. It must run before dedupe: all fingerprint records share one
// bucket, so the deduplicated set can never hold more than one signal.
func countFingerprintSignals(obs []observation) int {
	signals := make(map[string]struct{})
	for _, o := range obs {
		d, ok := o.details.(model.FingerprintDetails)
		if !ok || d.Signal == "" {
			continue
		}
		signals[d.Signal] = struct{}{}
	}
	return len(signals)
}

// fingerprintingTracker reports whether any tracker record, duplicates
// included, is flagged for fingerprinting. The returned ID is the smallest
// flagged evidence ID so that the explanation does not depend on input order.
func fingerprintingTracker(obs []observation) (string, bool) {
	var (
		id    string
		found bool
	)
	for _, o := range obs {
		d, ok := o.details.(model.TrackerDetails)
		if !ok || !d.Fingerprinting {
			continue
		}
		if !found || o.record.ID < id {
			id = o.record.ID
		}
		found = true
	}
	return id, found
}
