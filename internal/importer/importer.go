package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/privacyscan/internal/model"
)

// Format is an evidence bundle encoding.
type Format string

// Supported bundle formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the bundle format from a file extension.
// Anything but .yaml and .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat parses a format name. An empty name returns fallback.
func ParseFormat(name string, fallback Format) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return fallback, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Bundle is a parsed evidence bundle.
type Bundle struct {
	// URL is the scanned URL. It may be empty for a bare record list.
	URL string

	// RootDomain overrides the root domain derived from URL when set.
	RootDomain string

	// Records are the evidence records in input order.
	Records []model.EvidenceRecord
}

// record is the wire form of one evidence record. Details stays untyped
// here so that JSON and YAML input decode the same way.
type record struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Details   any       `json:"details" yaml:"details"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type bundle struct {
	URL        string   `json:"url" yaml:"url"`
	RootDomain string   `json:"root_domain" yaml:"root_domain"`
	Evidence   []record `json:"evidence" yaml:"evidence"`
}

// Read parses a bundle from r.
func Read(r io.Reader, format Format) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}
	return Parse(data, format)
}

// Parse parses a bundle from data.
func Parse(data []byte, format Format) (*Bundle, error) {
	var (
		raw bundle
		err error
	)
	switch format {
	case FormatJSON:
		raw, err = decodeJSON(data)
	case FormatYAML:
		raw, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if len(raw.Evidence) == 0 {
		return nil, ErrEmptyBundle
	}

	out := &Bundle{
		URL:        strings.TrimSpace(raw.URL),
		RootDomain: strings.TrimSpace(raw.RootDomain),
		Records:    make([]model.EvidenceRecord, 0, len(raw.Evidence)),
	}
	for i, rec := range raw.Evidence {
		converted, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out.Records = append(out.Records, converted)
	}
	return out, nil
}

func decodeJSON(data []byte) (bundle, error) {
	var raw bundle
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw.Evidence); err != nil {
			return raw, fmt.Errorf("failed to parse JSON evidence: %w", err)
		}
		return raw, nil
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return raw, fmt.Errorf("failed to parse JSON evidence: %w", err)
	}
	return raw, nil
}

func decodeYAML(data []byte) (bundle, error) {
	var raw bundle

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return raw, fmt.Errorf("failed to parse YAML evidence: %w", err)
	}
	if len(node.Content) == 0 {
		return raw, nil
	}

	var err error
	if node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&raw.Evidence)
	} else {
		err = node.Content[0].Decode(&raw)
	}
	if err != nil {
		return raw, fmt.Errorf("failed to parse YAML evidence: %w", err)
	}
	return raw, nil
}

// toModel converts the wire record. Details are re-encoded as JSON; a
// missing details value becomes an empty object.
func (r record) toModel() (model.EvidenceRecord, error) {
	kind := strings.ToLower(strings.TrimSpace(r.Kind))
	if kind == "" {
		return model.EvidenceRecord{}, ErrMissingKind
	}

	details := json.RawMessage(`{}`)
	if r.Details != nil {
		encoded, err := json.Marshal(r.Details)
		if err != nil {
			return model.EvidenceRecord{}, fmt.Errorf("failed to encode details: %w", err)
		}
		details = encoded
	}

	return model.EvidenceRecord{
		ID:        strings.TrimSpace(r.ID),
		Kind:      model.EvidenceKind(kind),
		Details:   details,
		CreatedAt: r.CreatedAt,
	}, nil
}
