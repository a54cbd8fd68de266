package pipeline

import "github.com/nao1215/privacyscan/internal/model"

// Job carries one scoring run through the pipeline.
type Job struct {
	// ScanID identifies the scan to score.
	ScanID string

	// Scan is filled in by LoadStep.
	Scan *model.Scan

	// Evidence is filled in by LoadStep.
	Evidence []model.EvidenceRecord

	// Result is filled in by ScoreStep.
	Result *model.ScoreResult

	// Digest is filled in by PersistStep.
	Digest string

	// Err is the error that stopped the job, if any.
	Err error

	// Performed lists the steps that ran, in order.
	Performed []string
}

// NewJob creates a job for the given scan.
func NewJob(scanID string) *Job {
	return &Job{ScanID: scanID}
}

// Report returns the rendered form of the job, or nil if the job did not
// get as far as scoring.
func (j *Job) Report() *model.ScanReport {
	if j.Scan == nil || j.Result == nil {
		return nil
	}
	return model.NewScanReport(*j.Scan, j.Result, j.Digest)
}
