package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/domain"
	"github.com/nao1215/privacyscan/internal/model"
	"github.com/nao1215/privacyscan/internal/pipeline"
	"github.com/nao1215/privacyscan/internal/report"
	"github.com/nao1215/privacyscan/internal/scoring"
)

var (
	// errScoreTarget is returned when score gets neither a scan ID nor --evidence.
	errScoreTarget = errors.New("specify a scan ID or --evidence (not both)")

	// errScoreBelowThreshold is returned by --fail-under.
	errScoreBelowThreshold = errors.New("score is below the --fail-under threshold")
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [scan-id]",
		Short: "Score a stored scan or an evidence file",
		Long: `Score computes the privacy score of a scan from its evidence.

With a scan ID, the stored evidence is scored and the result is saved to the
score history. With --evidence, an evidence file is scored directly without
touching the database.

Examples:
  # Score a stored scan
  privacyscan score 6f1c2a4e-...

  # Score an evidence file as Markdown
  privacyscan score --evidence evidence.json --format markdown

  # Fail a CI job when the score drops below 80
  privacyscan score --evidence evidence.yaml --fail-under 80`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScoreCmd,
	}

	cmd.Flags().StringP("evidence", "e", "", "Score this evidence file instead of a stored scan")
	cmd.Flags().String("url", "", "Scanned URL for --evidence (overrides the bundle's url)")
	cmd.Flags().String("root-domain", "", "Root domain for --evidence (default: derived from the URL)")
	cmd.Flags().String("input-format", "auto", "Evidence format for --evidence: auto, json or yaml")
	cmd.Flags().Int("fail-under", 0, "Exit with an error when the score is below this value")
	addReportFlags(cmd)

	return cmd
}

// runScoreCmd executes the score command.
func runScoreCmd(cmd *cobra.Command, args []string) error {
	evidencePath := flagString(cmd, "evidence")
	if (len(args) == 0) == (evidencePath == "") {
		return errScoreTarget
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var rep *model.ScanReport
	if evidencePath != "" {
		rep, err = scoreEvidenceFile(cmd, a, evidencePath)
	} else {
		rep, err = scoreStoredScan(cmd, a, args[0])
	}
	if err != nil {
		return err
	}

	if err := a.writeReport(cmd, func(w report.Writer) error {
		_, err := w.Write(rep)
		return err
	}); err != nil {
		return err
	}

	failUnder, err := cmd.Flags().GetInt("fail-under")
	if err != nil {
		return err
	}
	if rep.Result.Score < failUnder {
		return fmt.Errorf("%w: %d < %d", errScoreBelowThreshold, rep.Result.Score, failUnder)
	}
	return nil
}

// scoreStoredScan runs the scoring pipeline for a stored scan.
func scoreStoredScan(cmd *cobra.Command, a *app, scanID string) (*model.ScanReport, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	job := pipeline.NewJob(scanID)
	p := pipeline.DefaultPipeline(store, a.engine(), pipeline.WithLogger(a.logger))
	if err := p.Execute(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to score scan %s: %w", scanID, err)
	}

	// Reload for the stored status and scoring time.
	if scan, err := store.GetScan(ctx, scanID); err == nil {
		job.Scan = scan
	}
	return job.Report(), nil
}

// scoreEvidenceFile scores an evidence file without the database.
func scoreEvidenceFile(cmd *cobra.Command, a *app, path string) (*model.ScanReport, error) {
	bundle, err := readBundle(cmd, path)
	if err != nil {
		return nil, err
	}

	url := flagString(cmd, "url")
	if url == "" {
		url = bundle.URL
	}
	if normalized, err := domain.NormalizeURL(url); err == nil {
		url = normalized
	}

	root := flagString(cmd, "root-domain")
	if root == "" {
		root = bundle.RootDomain
	}
	if root == "" {
		root = a.rootDomainFor(url)
	}
	if root == "" && url != "" {
		root, _ = domain.RootDomain(url) //nolint:errcheck // an empty root scores everything as third-party
	}
	if root == "" {
		a.logger.Warn("no root domain, every observed domain counts as third-party", "evidence", path)
	}

	result := a.engine().Score(bundle.Records, root)
	digest, err := scoring.Digest(result)
	if err != nil {
		return nil, err
	}

	scan := model.Scan{
		URL:        url,
		RootDomain: root,
		Status:     model.ScanStatusScored,
		ScoredAt:   time.Now().UTC(),
	}
	return model.NewScanReport(scan, result, digest), nil
}
