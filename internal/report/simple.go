package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/privacyscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly into
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds the score breakdown and issue background.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

const ruleWidth = 70

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	if report.Result == nil {
		return 0, ErrNoResult
	}

	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeScore(&sb, report.Result)
	w.writeIssues(&sb, report.Result)
	if w.verbose {
		w.writeBreakdown(&sb, report.Result)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// section writes a titled section separator.
func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        PRIVACYSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	scan := report.Scan
	fmt.Fprintf(sb, "URL:          %s\n", scan.URL)
	if scan.RootDomain != "" {
		fmt.Fprintf(sb, "Root Domain:  %s\n", scan.RootDomain)
	}
	if scan.ID != "" {
		fmt.Fprintf(sb, "Scan ID:      %s\n", scan.ID)
	}
	if !scan.CreatedAt.IsZero() {
		fmt.Fprintf(sb, "Scan Date:    %s\n", scan.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if scan.Status != "" {
		fmt.Fprintf(sb, "Status:       %s\n", statusText(scan))
	}
	fmt.Fprintf(sb, "Evidence:     %d records (%d unique)\n",
		report.Result.Meta.EvidenceCount, report.Result.Meta.UniqueEvidenceCount)
	sb.WriteString("\n")
}

// writeScore writes the score, label and summary.
func (w *SimpleWriter) writeScore(sb *strings.Builder, result *model.ScoreResult) {
	section(sb, "PRIVACY SCORE")

	fmt.Fprintf(sb, "  Score:    %d / 100\n", result.Score)
	fmt.Fprintf(sb, "  Label:    %s\n", result.Label)
	fmt.Fprintf(sb, "  Summary:  %s\n", result.Summary)
	sb.WriteString("\n")

	counts := result.CountBySeverity()
	for _, severity := range severityOrder {
		fmt.Fprintf(sb, "  %-9s %d\n", severity.String()+":", counts[severity])
	}
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by severity.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, result *model.ScoreResult) {
	section(sb, "ISSUES")

	if !result.HasIssues() {
		sb.WriteString("  No issues found\n\n")
		return
	}

	for _, severity := range severityOrder {
		issues := result.IssuesBySeverity(severity)
		if len(issues) == 0 {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), severity.String())
		for _, issue := range issues {
			fmt.Fprintf(sb, "  * %s (%s)\n", issue.Title, w.titleCase(issue.Category))
			if issue.Summary != "" {
				fmt.Fprintf(sb, "    %s\n", issue.Summary)
			}
			if issue.HowToFix != "" {
				fmt.Fprintf(sb, "    Fix: %s\n", issue.HowToFix)
			}
			if w.verbose {
				if issue.WhyItMatters != "" {
					fmt.Fprintf(sb, "    Why: %s\n", issue.WhyItMatters)
				}
				for _, ref := range issue.References {
					fmt.Fprintf(sb, "    See: %s\n", ref)
				}
			}
		}
		sb.WriteString("\n")
	}
}

// writeBreakdown writes every score adjustment.
func (w *SimpleWriter) writeBreakdown(sb *strings.Builder, result *model.ScoreResult) {
	section(sb, "SCORE BREAKDOWN")

	sb.WriteString("  Baseline  100\n")
	for _, e := range result.Explanations {
		fmt.Fprintf(sb, "  %+8d  %s", e.Points, e.Reason)
		if e.EvidenceID != "" {
			fmt.Fprintf(sb, " [%s]", e.EvidenceID)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "  Final     %d (clamped to 0-100)\n\n", result.Score)
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// WriteComparison outputs a comparison of two runs.
func (w *SimpleWriter) WriteComparison(cmp *Comparison) (int, error) {
	var sb strings.Builder

	section(&sb, "SCORE COMPARISON")

	fmt.Fprintf(&sb, "URL:       %s\n", cmp.URL)
	fmt.Fprintf(&sb, "Previous:  %d (%s) at %s\n", cmp.Previous.Score, cmp.Previous.Label,
		cmp.Previous.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current:   %d (%s) at %s\n", cmp.Current.Score, cmp.Current.Label,
		cmp.Current.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Change:    %+d\n\n", cmp.Delta)

	if cmp.Unchanged() {
		sb.WriteString("No changes between the two runs.\n")
		return io.WriteString(w.output, sb.String())
	}

	writeKeyList(&sb, "New issues", cmp.NewIssues)
	writeKeyList(&sb, "Resolved issues", cmp.ResolvedIssues)

	return io.WriteString(w.output, sb.String())
}

func writeKeyList(sb *strings.Builder, title string, keys []string) {
	fmt.Fprintf(sb, "%s:\n", title)
	if len(keys) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, key := range keys {
		fmt.Fprintf(sb, "  - %s\n", key)
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by privacyscan\n")
	sb.WriteString("https://github.com/nao1215/privacyscan\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
