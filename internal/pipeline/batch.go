package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor scores many scans concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on one job
// and lets the CLI and the HTTP adapter share the single-job path.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// DefaultConcurrency is the number of concurrent jobs used when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// WithConcurrency sets the maximum number of concurrent jobs.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each job to create a fresh
// pipeline instance, so that no state leaks between jobs.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scores the given scans concurrently. It returns one job per
// scan ID in input order, including failed jobs (see Job.Err).
//
// A failing job never cancels the others. The returned error is non-nil
// only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, scanIDs []string) ([]*Job, error) {
	jobs := make([]*Job, len(scanIDs))
	err := bp.ProcessBatchWithCallback(ctx, scanIDs, func(job *Job, index int) {
		// Each index is written by exactly one goroutine.
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback scores scans and calls callback for each
// finished job. The callback is called from the goroutine that ran the job,
// so it must be safe for concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	scanIDs []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch scoring",
		"total_scans", len(scanIDs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, scanID := range scanIDs {
		g.Go(func() error {
			job := NewJob(scanID)

			select {
			case <-ctx.Done():
				job.Err = ctx.Err()
				callback(job, i)
				return ctx.Err()
			default:
			}

			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("scoring failed",
					"scan_id", scanID,
					"error", err,
				)
			}
			callback(job, i)

			// Job errors are recorded on the job; only cancellation
			// propagates to the group.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch scoring complete",
		"total_scans", len(scanIDs),
		"elapsed", time.Since(startTime),
	)

	return err
}

// Summary counts succeeded and failed jobs.
func Summary(jobs []*Job) (succeeded, failed int) {
	for _, job := range jobs {
		if job == nil || job.Err != nil {
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed
}
