package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/privacyscan/internal/model"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// EvidenceSource provides a scan and its evidence.
type EvidenceSource interface {
	GetScan(ctx context.Context, id string) (*model.Scan, error)
	ListEvidence(ctx context.Context, scanID string) ([]model.EvidenceRecord, error)
}

// ResultSink stores score results.
type ResultSink interface {
	SaveResult(ctx context.Context, scanID string, result *model.ScoreResult) (string, error)
}

// Store is everything the default scoring pipeline needs from storage.
// *database.Store implements it.
type Store interface {
	EvidenceSource
	ResultSink
	FailureRecorder
}

// LoadStep loads the scan and its evidence.
// A missing scan is a precondition failure and stops the job.
type LoadStep struct {
	source EvidenceSource
}

// NewLoadStep creates a LoadStep reading from source.
func NewLoadStep(source EvidenceSource) *LoadStep {
	return &LoadStep{source: source}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, job *Job) error {
	scan, err := s.source.GetScan(ctx, job.ScanID)
	if err != nil {
		return fmt.Errorf("failed to load scan: %w", err)
	}
	evidence, err := s.source.ListEvidence(ctx, job.ScanID)
	if err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}

	job.Scan = scan
	job.Evidence = evidence
	return nil
}

// ScoreStep runs the scoring engine over the loaded evidence.
type ScoreStep struct {
	engine *scoring.Engine
	logger *slog.Logger
}

// ScoreStepOption configures a ScoreStep.
type ScoreStepOption func(*ScoreStep)

// WithScoreLogger sets a custom logger for the score step.
func WithScoreLogger(logger *slog.Logger) ScoreStepOption {
	return func(s *ScoreStep) {
		s.logger = logger
	}
}

// NewScoreStep creates a ScoreStep. A nil engine uses scoring defaults.
func NewScoreStep(engine *scoring.Engine, opts ...ScoreStepOption) *ScoreStep {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	s := &ScoreStep{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the score step.
func (s *ScoreStep) Do(_ context.Context, job *Job) error {
	if job.Scan == nil {
		return fmt.Errorf("score step: %w", ErrScanNotLoaded)
	}

	job.Result = s.engine.Score(job.Evidence, job.Scan.RootDomain)

	s.logger.Info("scan scored",
		"scan_id", job.ScanID,
		"url", job.Scan.URL,
		"score", job.Result.Score,
		"label", job.Result.Label,
	)
	return nil
}

// PersistStep stores the result and records its digest on the job.
type PersistStep struct {
	sink ResultSink
}

// NewPersistStep creates a PersistStep writing to sink.
func NewPersistStep(sink ResultSink) *PersistStep {
	return &PersistStep{sink: sink}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if job.Result == nil {
		return fmt.Errorf("persist step: %w", ErrNotScored)
	}

	digest, err := s.sink.SaveResult(ctx, job.ScanID, job.Result)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	job.Digest = digest
	return nil
}

// DefaultPipeline builds the load, score and persist pipeline over store.
// Failed jobs mark their scan failed in the same store.
func DefaultPipeline(store Store, engine *scoring.Engine, opts ...Option) *Pipeline {
	opts = append([]Option{WithFailureRecorder(store)}, opts...)
	p := New(opts...)
	p.AddSteps(
		NewLoadStep(store),
		NewScoreStep(engine, WithScoreLogger(p.logger)),
		NewPersistStep(store),
	)
	return p
}
