package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nao1215/privacyscan/internal/model"
)

// rec builds an evidence record with a raw JSON details payload.
func rec(id string, kind model.EvidenceKind, details string) model.EvidenceRecord {
	return model.EvidenceRecord{
		ID:      id,
		ScanID:  "scan-1",
		Kind:    kind,
		Details: json.RawMessage(details),
	}
}

// trackers builds n tracker records cycling over the given domains.
func trackers(n int, domains ...string) []model.EvidenceRecord {
	records := make([]model.EvidenceRecord, 0, n)
	for i := range n {
		d := domains[i%len(domains)]
		records = append(records, rec(fmt.Sprintf("t%d", i), model.KindTracker, fmt.Sprintf(`{"domain":%q}`, d)))
	}
	return records
}

// policy returns a single policy record.
func policy() model.EvidenceRecord {
	return rec("p1", model.KindPolicy, `{"url":"https://example.com/privacy"}`)
}

// pointsFor sums the explanation points whose reason starts with category.
func pointsFor(result *model.ScoreResult, category string) int {
	total := 0
	for _, e := range result.Explanations {
		if strings.HasPrefix(e.Reason, category+": ") {
			total += e.Points
		}
	}
	return total
}

// explanationsFor returns the explanations of one category.
func explanationsFor(result *model.ScoreResult, category string) []model.Explanation {
	var out []model.Explanation
	for _, e := range result.Explanations {
		if strings.HasPrefix(e.Reason, category+": ") {
			out = append(out, e)
		}
	}
	return out
}

// issueKeys returns the issue keys in result order.
func issueKeys(result *model.ScoreResult) []string {
	keys := make([]string, len(result.Issues))
	for i, issue := range result.Issues {
		keys[i] = issue.Key
	}
	return keys
}
