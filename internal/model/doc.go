// Package model defines the core data structures used throughout privacyscan.
//
// This package contains the following main types:
//   - EvidenceRecord: one observation produced by a site crawl
//   - Details: the typed, validated payload of an evidence record
//   - ScoreResult: score, label, issues and audit explanations for a scan
//   - Scan and ScanReport: the persisted scan and its rendered form
//
// Models live in their own package because the scoring engine, the store,
// the report writers and the HTTP adapter all share them.
//
// Evidence details are decoded leniently: a malformed payload never produces
// an error, it produces the zero value of the kind's details type.
package model
