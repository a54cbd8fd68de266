// Package report renders scan results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text output for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables, alerts and a severity chart
//
// Design decision: We separate report writing from the result data
// structures (which are in the model package) so that new output formats
// never touch the scoring engine.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
