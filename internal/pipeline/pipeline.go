package pipeline

import (
	"context"
	"log/slog"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the job as left
// by the previous steps.
type Step interface {
	// Do executes the pipeline step. A returned error stops the job.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// FailureRecorder records that a scan could not be scored.
type FailureRecorder interface {
	MarkScanFailed(ctx context.Context, scanID, reason string) error
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// failures is told about jobs that stopped with an error. May be nil.
	failures FailureRecorder
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithFailureRecorder makes the pipeline mark a scan failed whenever a
// step returns an error.
func WithFailureRecorder(recorder FailureRecorder) Option {
	return func(p *Pipeline) {
		p.failures = recorder
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first error.
// The error is stored in job.Err, reported to the failure recorder and
// returned.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps should handle their own cancellation. This keeps a
// half-written result from being persisted after cancellation.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"scan_id", job.ScanID,
				"reason", ctx.Err(),
			)
			job.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"scan_id", job.ScanID,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"scan_id", job.ScanID,
				"error", err,
			)
			job.Err = err
			p.recordFailure(ctx, job.ScanID, err)
			return err
		}

		job.Performed = append(job.Performed, step.Name())
	}

	return nil
}

// recordFailure marks the scan failed. Errors are logged, not returned,
// so that they never hide the step error that caused them.
func (p *Pipeline) recordFailure(ctx context.Context, scanID string, cause error) {
	if p.failures == nil {
		return
	}
	// The job context may already be cancelled; the failure must still land.
	ctx = context.WithoutCancel(ctx)
	if err := p.failures.MarkScanFailed(ctx, scanID, cause.Error()); err != nil {
		p.logger.Warn("failed to mark scan failed",
			"scan_id", scanID,
			"error", err,
		)
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
