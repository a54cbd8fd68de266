package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/pipeline"
)

// errRescoreTarget is returned when rescore gets neither IDs nor --all.
var errRescoreTarget = errors.New("specify scan IDs or --all")

// NewRescoreCmd creates the rescore command.
func NewRescoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rescore [scan-id...]",
		Short: "Rescore stored scans from their evidence",
		Long: `Rescore recomputes the score of stored scans concurrently, for example after
changing the label thresholds. Every run is appended to the score history.

Examples:
  # Rescore two scans
  privacyscan rescore 6f1c2a4e-... 0b9d7e11-...

  # Rescore everything with 8 workers
  privacyscan rescore --all --concurrency 8`,
		RunE: runRescoreCmd,
	}

	cmd.Flags().BoolP("all", "a", false, "Rescore every stored scan")
	cmd.Flags().IntP("concurrency", "n", 0, "Number of concurrent jobs (default 4)")

	return cmd
}

// runRescoreCmd executes the rescore command.
func runRescoreCmd(cmd *cobra.Command, args []string) error {
	all := flagBool(cmd, "all")
	if all == (len(args) > 0) {
		return errRescoreTarget
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if n, err := cmd.Flags().GetInt("concurrency"); err == nil && n != 0 {
		a.cfg.Concurrency = n
		if err := a.cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	ids := args
	if all {
		scans, err := store.ListScans(ctx)
		if err != nil {
			return err
		}
		ids = make([]string, len(scans))
		for i, scan := range scans {
			ids[i] = scan.ID
		}
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No scans to rescore.")
		return nil
	}

	engine := a.engine()
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(store, engine, pipeline.WithLogger(a.logger))
		},
		pipeline.WithConcurrency(a.cfg.Concurrency),
		pipeline.WithBatchLogger(a.logger),
	)

	var (
		mu   sync.Mutex
		done int
	)
	jobs := make([]*pipeline.Job, len(ids))
	err = bp.ProcessBatchWithCallback(ctx, ids, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		jobs[index] = job
		done++
		if job.Err != nil {
			fmt.Fprintf(out, "[%d/%d] %s: failed: %v\n", done, len(ids), job.ScanID, job.Err)
			return
		}
		fmt.Fprintf(out, "[%d/%d] %s %s: %d (%s)\n",
			done, len(ids), job.ScanID, job.Scan.URL, job.Result.Score, job.Result.Label)
	})

	succeeded, failed := pipeline.Summary(jobs)
	fmt.Fprintf(out, "\nRescored %d scans: %d succeeded, %d failed\n", len(ids), succeeded, failed)

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed to rescore", failed, len(ids))
	}
	return nil
}
