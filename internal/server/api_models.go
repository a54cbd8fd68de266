package server

import "github.com/nao1215/privacyscan/internal/model"

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"scan not found"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"v0.1.0"`
}

// ScanListResponse wraps the scan list.
type ScanListResponse struct {
	Scans []model.Scan `json:"scans"`
	Count int          `json:"count"`
}
