package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/database"
	"github.com/nao1215/privacyscan/internal/report"
)

// errHistoryTarget is returned when history gets neither a URL nor --list.
var errHistoryTarget = errors.New("specify a URL or --list")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show the score history of a site",
		Long: `History lists every scoring run of a URL, newest first.

Examples:
  # Show the score history of a site
  privacyscan history https://www.example.com/

  # List every URL with a score history
  privacyscan history --list

  # Print the history as JSON
  privacyscan history www.example.com --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List every scored URL")
	cmd.Flags().String("format", "text", "Output format: text or json")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	list := flagBool(cmd, "list")
	if list == (len(args) > 0) {
		return errHistoryTarget
	}

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

	out := cmd.OutOrStdout()
	asJSON := a.cfg.ReportFormat() == report.FormatJSON

	if list {
		urls, err := store.ListScoredURLs(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, nonNil(urls))
		}
		return listScoredURLs(out, urls)
	}

	entries, err := store.GetScoreHistory(ctx, args[0])
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, nonNil(entries))
	}
	return listScoreHistory(out, args[0], entries)
}

func listScoredURLs(out io.Writer, urls []string) error {
	if len(urls) == 0 {
		fmt.Fprintln(out, "No scored sites found in the database.")
		fmt.Fprintln(out, "\nUse 'privacyscan import --score' to add one.")
		return nil
	}

	fmt.Fprintf(out, "Scored sites (%d):\n\n", len(urls))
	for _, url := range urls {
		fmt.Fprintf(out, "  %s\n", url)
	}
	return nil
}

func listScoreHistory(out io.Writer, url string, entries []database.ScoreHistoryEntry) error {
	if len(entries) == 0 {
		fmt.Fprintf(out, "No score history found for %s\n", url)
		return nil
	}

	fmt.Fprintf(out, "Score history for %s (%d runs):\n\n", entries[0].URL, len(entries))
	fmt.Fprintf(out, "  %-6s  %-20s  %5s  %-9s  %s\n", "ID", "Date", "Score", "Label", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 68))

	for _, e := range entries {
		issues := "-"
		if len(e.IssueKeys) > 0 {
			issues = strings.Join(e.IssueKeys, ", ")
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %5d  %-9s  %s\n",
			e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.Score, e.Label, issues)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// nonNil turns a nil slice into an empty one so JSON output is [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
