// Package database provides SQLite-based storage for privacyscan.
//
// The Store keeps three tables:
//   - scans: one row per scan, with its latest score result
//   - evidence: the records a crawl produced for a scan, in insertion order
//   - score_history: one row per scoring run, used for trend and compare views
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the whole
// state of a privacyscan installation fits in a single file, the driver is
// CGO-free, and WAL mode lets the HTTP adapter read while a batch rescore
// writes.
//
// The Store is the persistence collaborator of the scoring engine. It never
// scores anything itself; it hands evidence out and stores results back.
package database
