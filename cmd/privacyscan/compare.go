package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/database"
	"github.com/nao1215/privacyscan/internal/report"
)

// errNotEnoughHistory is returned when a URL has fewer than two runs.
var errNotEnoughHistory = errors.New("at least two scoring runs are needed to compare")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Compare the latest score of a site with an earlier one",
		Long: `Compare shows how the score of a site changed between two scoring runs:
the score delta, new issues and resolved issues.

By default the latest run is compared with the one before it. Use
--with-id to compare with a specific run from 'privacyscan history'.

Examples:
  # Compare the latest two runs
  privacyscan compare https://www.example.com/

  # Compare with history entry 3, as Markdown
  privacyscan compare www.example.com --with-id 3 --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific history entry (use 'history' to see IDs)")
	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	entries, err := store.GetScoreHistory(ctx, args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: no score history for %s", errNotEnoughHistory, args[0])
	}

	current := entries[0]
	var previous database.ScoreHistoryEntry

	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	if withID != 0 {
		entry, err := store.GetScoreHistoryByID(ctx, withID)
		if err != nil {
			return err
		}
		if entry.URL != current.URL {
			return fmt.Errorf("history entry %d belongs to %s, not %s", withID, entry.URL, current.URL)
		}
		previous = *entry
	} else {
		if len(entries) < 2 {
			return fmt.Errorf("%w: %s has 1 run", errNotEnoughHistory, current.URL)
		}
		previous = entries[1]
	}

	cmp := report.NewComparison(current.URL, snapshot(previous), snapshot(current))
	return a.writeReport(cmd, func(w report.Writer) error {
		_, err := w.WriteComparison(cmp)
		return err
	})
}

func snapshot(e database.ScoreHistoryEntry) report.Snapshot {
	return report.Snapshot{
		ScanID:    e.ScanID,
		Score:     e.Score,
		Label:     e.Label,
		Digest:    e.Digest,
		IssueKeys: e.IssueKeys,
		Timestamp: e.Timestamp,
	}
}
