package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/privacyscan/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or HTTP
// responses with the same API.
type Writer interface {
	// Write outputs one scored scan.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)

	// WriteComparison outputs the difference between two scoring runs.
	WriteComparison(cmp *Comparison) (int, error)
}

// Format names a report output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown}

// ParseFormat parses a format name. "md" is accepted for Markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "simple":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Options tunes the writer returned by New.
type Options struct {
	// Verbose adds score breakdowns to text output and pretty-prints JSON.
	Verbose bool

	// Version, when set, wraps JSON output with the tool version.
	Version string
}

// New returns a writer for format.
func New(format Format, output io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatText:
		return NewSimpleWriter(output, WithVerbose(opts.Verbose)), nil
	case FormatJSON:
		var jsonOpts []JSONWriterOption
		if opts.Verbose {
			jsonOpts = append(jsonOpts, WithPrettyPrint())
		}
		if opts.Version != "" {
			return NewFullJSONWriter(output, opts.Version, jsonOpts...), nil
		}
		return NewJSONWriter(output, jsonOpts...), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(cmp *Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(cmp)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	title  cases.Caser
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output: output,
		title:  cases.Title(language.English),
	}
}

// titleCase returns s in title case, e.g. "compliance" becomes "Compliance".
func (b baseWriter) titleCase(s string) string {
	return b.title.String(s)
}

// severityOrder lists severities from most to least severe.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// topFixes returns up to n issues that have remediation guidance, in
// result order (most severe first).
func topFixes(result *model.ScoreResult, n int) []model.Issue {
	fixes := make([]model.Issue, 0, n)
	for _, issue := range result.Issues {
		if len(fixes) == n {
			break
		}
		if issue.HowToFix != "" {
			fixes = append(fixes, issue)
		}
	}
	return fixes
}

// statusText returns a display string for a scan status.
func statusText(scan model.Scan) string {
	switch scan.Status {
	case model.ScanStatusScored:
		return "Scored"
	case model.ScanStatusFailed:
		if scan.ErrorMessage != "" {
			return "Failed - " + scan.ErrorMessage
		}
		return "Failed"
	case model.ScanStatusPending:
		return "Pending"
	default:
		return string(scan.Status)
	}
}
