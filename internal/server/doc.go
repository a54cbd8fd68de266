// Package server exposes stored scans and scores over a small read-mostly
// HTTP API built on chi.
//
// Routes:
//
//	GET  /healthz                   liveness probe
//	GET  /api/scans                 every scan, newest first
//	GET  /api/scans/{id}            one scan
//	GET  /api/scans/{id}/score      the stored report of a scan (cached, ETag)
//	POST /api/scans/{id}/rescore    rescore from stored evidence
//
// Score responses are cached per scan ID and carry the result digest as
// their ETag, so clients can poll with If-None-Match. Rescoring drops the
// cache entry of the scan.
package server
