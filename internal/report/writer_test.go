package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/privacyscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.ScanReport {
	scan := model.Scan{
		ID:         "scan-1",
		URL:        "https://www.example.com/",
		RootDomain: "example.com",
		Status:     model.ScanStatusScored,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	result := &model.ScoreResult{
		Score: 72,
		Label: "Caution",
		Explanations: []model.Explanation{
			{EvidenceID: "ev-1", Points: -5, Reason: "trackers: tracker detected: google-analytics.com"},
			{EvidenceID: "ev-2", Points: -10, Reason: "insecure: insecure resource loaded over HTTP"},
			{Points: -5, Reason: "policy: no privacy policy found"},
		},
		Issues: []model.Issue{
			{
				Key:          "security.mixed_content",
				Severity:     model.SeverityHigh,
				Category:     "security",
				Title:        "Mixed content",
				Summary:      "1 resource is loaded over plain HTTP.",
				HowToFix:     "Serve every resource over HTTPS.",
				WhyItMatters: "Plain HTTP requests can be read and modified in transit.",
				References:   []string{"https://developer.mozilla.org/en-US/docs/Web/Security/Mixed_content"},
				SortWeight:   20,
			},
			{
				Key:        "privacy.trackers",
				Severity:   model.SeverityHigh,
				Category:   "privacy",
				Title:      "Third-party trackers",
				Summary:    "1 tracker domain was observed.",
				HowToFix:   "Remove tracking scripts or gate them behind consent.",
				References: []string{},
				SortWeight: 10,
			},
			{
				Key:        "compliance.policy",
				Severity:   model.SeverityLow,
				Category:   "compliance",
				Title:      "No privacy policy",
				HowToFix:   "Publish a privacy policy and link it from every page.",
				References: []string{},
				SortWeight: 80,
			},
		},
		Summary: "Trackers detected, insecure resources, no privacy policy",
		Meta: model.Meta{
			TrackerDomains:      []string{"google-analytics.com"},
			ThirdPartyDomains:   []string{"google-analytics.com"},
			MissingHeaders:      []string{"content-security-policy"},
			InsecureResources:   []string{"http://cdn.example.net/lib.js"},
			EvidenceCount:       4,
			UniqueEvidenceCount: 3,
		},
	}
	return model.NewScanReport(scan, result, "abc123")
}

// createCleanReport creates a report without issues.
func createCleanReport() *model.ScanReport {
	return model.NewScanReport(model.Scan{URL: "https://clean.example/"}, &model.ScoreResult{
		Score:        100,
		Label:        "Safe",
		Explanations: []model.Explanation{},
		Issues:       []model.Issue{},
		Summary:      "No major privacy risks detected",
	}, "")
}

func createTestComparison() *Comparison {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewComparison("https://www.example.com/",
		Snapshot{ScanID: "a", Score: 90, Label: "Safe", Digest: "d1", IssueKeys: []string{"compliance.policy"}, Timestamp: at},
		Snapshot{ScanID: "b", Score: 72, Label: "Caution", Digest: "d2", IssueKeys: []string{"privacy.trackers"}, Timestamp: at.Add(time.Hour)},
	)
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header score and issues", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"PRIVACYSCAN REPORT",
			"https://www.example.com/",
			"Root Domain:  example.com",
			"Score:    72 / 100",
			"Label:    Caution",
			"Mixed content (Security)",
			"Fix: Serve every resource over HTTPS.",
			"Evidence:     4 records (3 unique)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "SCORE BREAKDOWN") {
			t.Error("breakdown should only be written in verbose mode")
		}
	})

	t.Run("verbose mode writes breakdown and background", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"SCORE BREAKDOWN", "-10", "[ev-2]", "Why: Plain HTTP", "See: https://developer.mozilla.org"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("clean report has no issues", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createCleanReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No issues found") {
			t.Error("expected no issues message")
		}
	})

	t.Run("missing result is rejected", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(&model.ScanReport{})
		if !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
		if buf.Len() != 0 {
			t.Error("expected nothing to be written")
		}
	})

	t.Run("comparison lists new and resolved issues", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Change:    -18", "New issues:\n  - privacy.trackers", "Resolved issues:\n  - compliance.policy"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Result == nil || decoded.Result.Score != 72 {
			t.Errorf("expected score 72, got %+v", decoded.Result)
		}
		if decoded.Result.Issues[0].Severity != model.SeverityHigh {
			t.Errorf("expected severity to round-trip, got %v", decoded.Result.Issues[0].Severity)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"scan\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("severity is serialized by name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"severity":"high"`) {
			t.Error("expected lowercase severity name")
		}
	})

	t.Run("full writer wraps report with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", decoded.Version)
		}
		if decoded.Report == nil || decoded.Report.Scan.URL != "https://www.example.com/" {
			t.Errorf("expected wrapped report, got %+v", decoded.Report)
		}
	})

	t.Run("comparison is serialized", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded Comparison
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Delta != -18 {
			t.Errorf("expected delta -18, got %d", decoded.Delta)
		}
	})

	t.Run("missing result is rejected", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(&model.ScanReport{}); !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero byte count")
		}

		output := buf.String()
		for _, want := range []string{
			"# Privacy Report",
			"## Score",
			"**72 / 100** (Caution)",
			"## Top Fixes",
			"## Issues",
			"### 🟠 High",
			"Mixed content",
			"pie",
			"`google-analytics.com`",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("clean report uses tip alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createCleanReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected tip alert for a clean report")
		}
		if strings.Contains(output, "Issue Severity Distribution") {
			t.Error("expected no chart without issues")
		}
		if strings.Contains(output, "## Top Fixes") {
			t.Error("expected no top fixes without issues")
		}
	})

	t.Run("comparison writes changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Score Comparison", "## New Issues", "`privacy.trackers`", "## Resolved Issues", "dropped by 18"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

// TestTopFixes tests remediation selection.
func TestTopFixes(t *testing.T) {
	t.Parallel()

	result := createTestReport().Result
	fixes := topFixes(result, 2)
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}
	if fixes[0].Key != "security.mixed_content" {
		t.Errorf("expected most severe issue first, got %s", fixes[0].Key)
	}
}

// TestComparison tests the run difference.
func TestComparison(t *testing.T) {
	t.Parallel()

	t.Run("detects changes", func(t *testing.T) {
		t.Parallel()

		cmp := createTestComparison()
		if cmp.Unchanged() {
			t.Error("expected comparison to be changed")
		}
		if len(cmp.NewIssues) != 1 || cmp.NewIssues[0] != "privacy.trackers" {
			t.Errorf("unexpected new issues: %v", cmp.NewIssues)
		}
		if len(cmp.ResolvedIssues) != 1 || cmp.ResolvedIssues[0] != "compliance.policy" {
			t.Errorf("unexpected resolved issues: %v", cmp.ResolvedIssues)
		}
	})

	t.Run("equal digests are unchanged", func(t *testing.T) {
		t.Parallel()

		snap := Snapshot{Score: 80, Digest: "same", IssueKeys: []string{"x"}}
		cmp := NewComparison("u", snap, snap)
		if !cmp.Unchanged() {
			t.Error("expected comparison to be unchanged")
		}
		if cmp.NewIssues == nil || cmp.ResolvedIssues == nil {
			t.Error("issue lists should never be nil")
		}
	})
}

// TestParseFormat tests format name parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"Simple", FormatText, false},
		{"json", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseFormat(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestNew tests writer construction by format.
func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w, err := New(FormatJSON, &buf, Options{Version: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.(*FullJSONWriter); !ok {
		t.Errorf("expected FullJSONWriter when a version is set, got %T", w)
	}

	w, err = New(FormatMarkdown, &buf, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.(*MarkdownWriter); !ok {
		t.Errorf("expected MarkdownWriter, got %T", w)
	}

	if _, err := New(Format("xml"), &buf, Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestMultiWriter tests writing to multiple destinations.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var textBuf, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&textBuf), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != textBuf.Len()+jsonBuf.Len() {
		t.Errorf("expected total %d bytes, got %d", textBuf.Len()+jsonBuf.Len(), n)
	}
	if textBuf.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("expected both writers to receive output")
	}

	if _, err := mw.WriteComparison(createTestComparison()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
