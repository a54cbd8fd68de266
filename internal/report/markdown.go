package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/privacyscan/internal/model"
)

// topFixCount is how many issues the "Top Fixes" section lists.
const topFixCount = 3

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and for pasting into issues.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	if report.Result == nil {
		return 0, ErrNoResult
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScore(md, report.Result)
	w.writeTopFixes(md, report.Result)
	w.writeIssues(md, report.Result)
	w.writeFacts(md, report.Result.Meta)
	w.writeBreakdown(md, report.Result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Privacy Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + report.Scan.URL + "`"},
	}
	if report.Scan.RootDomain != "" {
		rows = append(rows, []string{"Root Domain", "`" + report.Scan.RootDomain + "`"})
	}
	if report.Scan.ID != "" {
		rows = append(rows, []string{"Scan ID", "`" + report.Scan.ID + "`"})
	}
	if !report.Scan.CreatedAt.IsZero() {
		rows = append(rows, []string{"Scan Date", report.Scan.CreatedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if report.Scan.Status != "" {
		rows = append(rows, []string{"Status", statusText(report.Scan)})
	}
	rows = append(rows, []string{"Evidence", fmt.Sprintf("%d records (%d unique)",
		report.Result.Meta.EvidenceCount, report.Result.Meta.UniqueEvidenceCount)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeScore writes the score, an alert for the label, and the severity
// distribution.
func (w *MarkdownWriter) writeScore(md *markdown.Markdown, result *model.ScoreResult) {
	md.H2("Score")
	md.PlainText("")
	md.PlainTextf("**%d / 100** (%s)", result.Score, result.Label)
	md.PlainText("")

	w.writeAlert(md, result)

	counts := result.CountBySeverity()
	rows := make([][]string, 0, len(severityOrder)+1)
	for _, severity := range severityOrder {
		rows = append(rows, []string{severityEmoji(severity) + " " + w.titleCase(severity.Name()), strconv.Itoa(counts[severity])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Issues)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")

	if result.HasIssues() {
		w.writePieChart(md, counts)
	}
}

// writeAlert writes an alert matching how much the score was reduced.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.ScoreResult) {
	counts := result.CountBySeverity()
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf("%s %d critical issue(s) require immediate attention.", result.Summary, counts[model.SeverityCritical])
	case counts[model.SeverityHigh] > 0:
		md.Warningf("%s %d high severity issue(s) should be addressed.", result.Summary, counts[model.SeverityHigh])
	case counts[model.SeverityMedium] > 0:
		md.Importantf("%s %d medium severity issue(s) found.", result.Summary, counts[model.SeverityMedium])
	case result.HasIssues():
		md.Note(result.Summary)
	default:
		md.Tip(result.Summary)
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, severity := range severityOrder {
		if n := counts[severity]; n > 0 {
			chart.LabelAndIntValue(w.titleCase(severity.Name()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeTopFixes lists the most important remediation steps.
func (w *MarkdownWriter) writeTopFixes(md *markdown.Markdown, result *model.ScoreResult) {
	fixes := topFixes(result, topFixCount)
	if len(fixes) == 0 {
		return
	}

	md.H2("Top Fixes")
	md.PlainText("")

	items := make([]string, len(fixes))
	for i, issue := range fixes {
		items[i] = fmt.Sprintf("**%s**: %s", issue.Title, issue.HowToFix)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.ScoreResult) {
	md.H2("Issues")
	md.PlainText("")

	if !result.HasIssues() {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	for _, severity := range severityOrder {
		issues := result.IssuesBySeverity(severity)
		if len(issues) == 0 {
			continue
		}

		md.PlainText("### " + severityEmoji(severity) + " " + w.titleCase(severity.Name()))
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, issue := range issues {
			rows[i] = []string{
				issue.Title,
				w.titleCase(issue.Category),
				truncateString(orDash(issue.Summary), 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Issue", "Category", "Details"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, issue := range issues {
			if issue.WhyItMatters == "" && len(issue.References) == 0 {
				continue
			}
			md.Details(issue.Title, issueDetails(issue))
		}
		md.PlainText("")
	}
}

// issueDetails formats the background of an issue for a details block.
func issueDetails(issue model.Issue) string {
	var sb strings.Builder
	if issue.WhyItMatters != "" {
		sb.WriteString(issue.WhyItMatters)
	}
	for _, ref := range issue.References {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(ref)
	}
	return sb.String()
}

// writeFacts writes the raw facts the score was derived from.
func (w *MarkdownWriter) writeFacts(md *markdown.Markdown, meta model.Meta) {
	md.H2("Observed")
	md.PlainText("")

	tls := meta.TLSGrade
	if tls == "" {
		tls = "unknown"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Fact", "Value"},
		Rows: [][]string{
			{"Tracker domains", strconv.Itoa(len(meta.TrackerDomains))},
			{"Third-party domains", strconv.Itoa(len(meta.ThirdPartyDomains))},
			{"Missing security headers", strconv.Itoa(len(meta.MissingHeaders))},
			{"Cookies with flag issues", strconv.Itoa(meta.CookieIssueCount)},
			{"Insecure resources", strconv.Itoa(len(meta.InsecureResources))},
			{"Privacy policy", yesNo(meta.PolicyFound)},
			{"TLS grade", tls},
			{"Fingerprinting signals", strconv.Itoa(meta.FingerprintSignals)},
		},
	})
	md.PlainText("")

	if len(meta.TrackerDomains) > 0 {
		md.PlainText("### Tracker Domains")
		md.PlainText("")
		md.BulletList(codeSpans(meta.TrackerDomains)...)
		md.PlainText("")
	}
	if len(meta.MissingHeaders) > 0 {
		md.PlainText("### Missing Headers")
		md.PlainText("")
		md.BulletList(codeSpans(meta.MissingHeaders)...)
		md.PlainText("")
	}
}

// writeBreakdown writes the score adjustments.
func (w *MarkdownWriter) writeBreakdown(md *markdown.Markdown, result *model.ScoreResult) {
	if len(result.Explanations) == 0 {
		return
	}

	rows := make([][]string, len(result.Explanations))
	for i, e := range result.Explanations {
		rows[i] = []string{
			fmt.Sprintf("%+d", e.Points),
			e.Reason,
			orDash(e.EvidenceID),
		}
	}

	md.Details("Score breakdown", "Baseline 100, clamped to 0-100 after all adjustments.")
	md.Table(markdown.TableSet{
		Header: []string{"Points", "Reason", "Evidence"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteComparison outputs the comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(cmp *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Score Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Score", "Label", "Date"},
		Rows: [][]string{
			{"Previous", strconv.Itoa(cmp.Previous.Score), cmp.Previous.Label, cmp.Previous.Timestamp.Format("2006-01-02 15:04:05")},
			{"Current", strconv.Itoa(cmp.Current.Score), cmp.Current.Label, cmp.Current.Timestamp.Format("2006-01-02 15:04:05")},
		},
	})
	md.PlainText("")

	switch {
	case cmp.Unchanged():
		md.Note("No changes between the two runs.")
	case cmp.Delta < 0:
		md.Warningf("The score dropped by %d points.", -cmp.Delta)
	default:
		md.Tip(fmt.Sprintf("The score changed by %+d points.", cmp.Delta))
	}
	md.PlainText("")

	if len(cmp.NewIssues) > 0 {
		md.H2("New Issues")
		md.PlainText("")
		md.BulletList(codeSpans(cmp.NewIssues)...)
		md.PlainText("")
	}
	if len(cmp.ResolvedIssues) > 0 {
		md.H2("Resolved Issues")
		md.PlainText("")
		md.BulletList(codeSpans(cmp.ResolvedIssues)...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [privacyscan](https://github.com/nao1215/privacyscan)*")
}

// severityEmoji returns the marker used for a severity in headings.
func severityEmoji(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🔵"
	default:
		return "⚪"
	}
}

func codeSpans(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "`" + v + "`"
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
