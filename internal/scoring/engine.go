package scoring

import (
	"log/slog"

	"github.com/nao1215/privacyscan/internal/domain"
	"github.com/nao1215/privacyscan/internal/model"
)

// Engine computes score results. The zero value is not usable; create one
// with NewEngine. An Engine holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	labeler Labeler
	rules   []Rule
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLabeler sets the labeler. The default is DefaultThresholds.
func WithLabeler(labeler Labeler) Option {
	return func(e *Engine) {
		if labeler != nil {
			e.labeler = labeler
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		labeler: DefaultThresholds(),
		rules:   rules,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultEngine backs the package-level Score function.
var defaultEngine = NewEngine()

// Score scores records with the default engine.
func Score(records []model.EvidenceRecord, rootDomain string) *model.ScoreResult {
	return defaultEngine.Score(records, rootDomain)
}

// Score computes the result for the evidence of one scan. rootDomain is the
// registrable domain of the scanned site; when it cannot be parsed every
// observed domain counts as third-party.
//
// Score never fails. Malformed evidence details are coerced to empty values
// and records of unknown kinds are kept but contribute nothing.
func (e *Engine) Score(records []model.EvidenceRecord, rootDomain string) *model.ScoreResult {
	obs := decodeAll(records)
	raw := collectRawFacts(obs)
	unique := dedupe(obs)

	classifier := domain.NewClassifier(rootDomain)
	if classifier.Root() == "" && rootDomain != "" {
		e.logger.Debug("root domain could not be parsed, treating all domains as third-party",
			"root_domain", rootDomain)
	}

	f := collectFacts(unique, classifier, len(records), raw)
	score, adjustments := evaluate(e.rules, f)

	explanations := make([]model.Explanation, len(adjustments))
	for i, adj := range adjustments {
		explanations[i] = model.Explanation{
			EvidenceID: adj.EvidenceID,
			Points:     adj.Points,
			Reason:     adj.Category + ": " + adj.Reason,
		}
	}

	result := &model.ScoreResult{
		Score:        score,
		Label:        e.labeler.Label(score),
		Explanations: explanations,
		Issues:       synthesizeIssues(f),
		Summary:      summarize(f),
		Meta:         buildMeta(f),
	}

	e.logger.Debug("scored evidence",
		"records", f.evidenceCount,
		"unique", f.uniqueCount,
		"score", result.Score,
		"label", result.Label,
		"issues", len(result.Issues))

	return result
}

// buildMeta copies the facts into their serializable form.
func buildMeta(f *facts) model.Meta {
	return model.Meta{
		TrackerDomains:      f.trackers.sorted(),
		ThirdPartyDomains:   f.thirdParties.sorted(),
		MissingHeaders:      f.headers.sorted(),
		CookieIssueCount:    f.cookies.len(),
		PolicyFound:         f.policyFound,
		TLSGrade:            f.tlsGrade,
		FingerprintDetected: f.fingerprintDetected(),
		FingerprintSignals:  f.fingerprintSignals,
		MixedContent:        f.mixedContent(),
		InsecureResources:   f.insecure.sorted(),
		EvidenceCount:       f.evidenceCount,
		UniqueEvidenceCount: f.uniqueCount,
	}
}
