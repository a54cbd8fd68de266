// Package scoring turns the evidence collected by a site crawl into a
// privacy score, a label, ranked issues and audit explanations.
//
// The computation is a pure function of the evidence records and the scan's
// registrable root domain:
//
//	records -> decode -> dedupe -> classify -> facts -> {rules, issues} -> result
//
// Each stage lives in its own file:
//   - dedup.go: one record per violation, first occurrence wins
//   - facts.go: per-category aggregates (unique domains, headers, TLS grade)
//   - rules.go: the penalty/bonus table, folded once into the score
//   - issues.go: human-facing issues with remediation guidance
//   - summary.go: the one-line summary
//   - engine.go: assembly of the final ScoreResult
//
// Nothing in this package performs I/O or keeps state between calls, so an
// Engine may be shared by any number of goroutines.
package scoring
