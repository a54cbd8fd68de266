package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/privacyscan/internal/model"
)

const jsonBundle = `{
  "url": "https://www.example.com/",
  "evidence": [
    {"id": "e1", "kind": "tracker", "details": {"domain": "google-analytics.com"}},
    {"kind": "POLICY"}
  ]
}`

const yamlBundle = `
url: https://www.example.com/
root_domain: example.com
evidence:
  - id: e1
    kind: tracker
    details:
      domain: google-analytics.com
      fingerprinting: true
  - kind: header
    details: {name: Content-Security-Policy}
`

// TestParse tests bundle parsing in both formats.
func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("json object", func(t *testing.T) {
		t.Parallel()

		b, err := Parse([]byte(jsonBundle), FormatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.URL != "https://www.example.com/" {
			t.Errorf("unexpected url %q", b.URL)
		}
		if len(b.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(b.Records))
		}
		if b.Records[0].ID != "e1" || b.Records[0].Kind != model.KindTracker {
			t.Errorf("unexpected first record: %+v", b.Records[0])
		}
		if b.Records[1].Kind != model.KindPolicy {
			t.Errorf("expected kind to be lowercased, got %q", b.Records[1].Kind)
		}
		if string(b.Records[1].Details) != "{}" {
			t.Errorf("expected empty details object, got %s", b.Records[1].Details)
		}

		details, ok := b.Records[0].Decode().(model.TrackerDetails)
		if !ok || details.Domain != "google-analytics.com" {
			t.Errorf("expected tracker details to decode, got %#v", b.Records[0].Decode())
		}
	})

	t.Run("json array", func(t *testing.T) {
		t.Parallel()

		b, err := Parse([]byte(`[{"kind":"policy","details":{}}]`), FormatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.URL != "" || len(b.Records) != 1 {
			t.Errorf("unexpected bundle: %+v", b)
		}
	})

	t.Run("yaml object", func(t *testing.T) {
		t.Parallel()

		b, err := Parse([]byte(yamlBundle), FormatYAML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.RootDomain != "example.com" {
			t.Errorf("unexpected root domain %q", b.RootDomain)
		}
		if len(b.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(b.Records))
		}
		if !strings.Contains(string(b.Records[0].Details), `"fingerprinting":true`) {
			t.Errorf("expected YAML details re-encoded as JSON, got %s", b.Records[0].Details)
		}
	})

	t.Run("yaml sequence", func(t *testing.T) {
		t.Parallel()

		b, err := Parse([]byte("- kind: tls\n  details: {grade: A}\n"), FormatYAML)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(b.Records) != 1 || b.Records[0].Kind != model.KindTLS {
			t.Errorf("unexpected bundle: %+v", b)
		}
	})
}

// TestParseErrors tests rejected bundles.
func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		data    string
		format  Format
		wantErr error
	}{
		{"empty evidence", `{"url":"https://a.example/","evidence":[]}`, FormatJSON, ErrEmptyBundle},
		{"empty yaml", ``, FormatYAML, ErrEmptyBundle},
		{"missing kind", `[{"details":{}}]`, FormatJSON, ErrMissingKind},
		{"unknown format", `[]`, Format("xml"), ErrUnknownFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.data), tc.format); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		if _, err := Parse([]byte(`{"evidence":`), FormatJSON); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

// TestFormatFromPath tests format detection by extension.
func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	testCases := map[string]Format{
		"evidence.json": FormatJSON,
		"evidence.YAML": FormatYAML,
		"evidence.yml":  FormatYAML,
		"evidence":      FormatJSON,
	}
	for path, want := range testCases {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, expected %q", path, got, want)
		}
	}
}

// TestParseFormat tests format name parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	if got, err := ParseFormat("", FormatYAML); err != nil || got != FormatYAML {
		t.Errorf("expected fallback, got %q (%v)", got, err)
	}
	if got, err := ParseFormat("YML", FormatJSON); err != nil || got != FormatYAML {
		t.Errorf("expected yaml, got %q (%v)", got, err)
	}
	if _, err := ParseFormat("toml", FormatJSON); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
