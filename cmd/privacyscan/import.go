package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyscan/internal/importer"
	"github.com/nao1215/privacyscan/internal/pipeline"
	"github.com/nao1215/privacyscan/internal/report"
)

// errNoURL is returned when neither the bundle nor --url names the site.
var errNoURL = errors.New("scan URL is required: set \"url\" in the evidence file or use --url")

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <evidence-file>",
		Short: "Import crawler evidence as a new scan",
		Long: `Import reads an evidence bundle (JSON or YAML) and stores it as a new scan.

The bundle is either an object with "url" and "evidence" keys, or a bare
list of evidence records together with --url. Use "-" to read from stdin.

Examples:
  # Import a JSON bundle
  privacyscan import evidence.json

  # Import a YAML record list for a URL and score it right away
  privacyscan import records.yaml --url https://www.example.com/ --score

  # Read a bundle from stdin
  crawler --json | privacyscan import - --input-format json`,
		Args: cobra.ExactArgs(1),
		RunE: runImportCmd,
	}

	cmd.Flags().String("url", "", "Scanned URL (overrides the bundle's url)")
	cmd.Flags().String("root-domain", "",
		"Root domain of the site (default: derived from the URL or the config file)")
	cmd.Flags().String("input-format", "auto", "Evidence format: auto, json or yaml")
	cmd.Flags().Bool("score", false, "Score the scan after importing")
	addReportFlags(cmd)

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	bundle, err := readBundle(cmd, args[0])
	if err != nil {
		return err
	}

	url := flagString(cmd, "url")
	if url == "" {
		url = bundle.URL
	}
	if url == "" {
		return errNoURL
	}

	root := flagString(cmd, "root-domain")
	if root == "" {
		root = bundle.RootDomain
	}
	if root == "" {
		root = a.rootDomainFor(url)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	scan, err := store.CreateScanWithRoot(ctx, url, root)
	if err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	if err := store.InsertEvidence(ctx, scan.ID, bundle.Records...); err != nil {
		return fmt.Errorf("failed to store evidence: %w", err)
	}

	a.logger.Info("evidence imported",
		"scan_id", scan.ID,
		"url", scan.URL,
		"records", len(bundle.Records),
	)

	if !flagBool(cmd, "score") {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d evidence records into scan %s (%s)\n",
			len(bundle.Records), scan.ID, scan.URL)
		return nil
	}

	job := pipeline.NewJob(scan.ID)
	if err := pipeline.DefaultPipeline(store, a.engine(), pipeline.WithLogger(a.logger)).Execute(ctx, job); err != nil {
		return fmt.Errorf("failed to score scan %s: %w", scan.ID, err)
	}
	return a.writeReport(cmd, func(w report.Writer) error {
		_, err := w.Write(job.Report())
		return err
	})
}

// readBundle reads an evidence bundle from path, or stdin for "-".
func readBundle(cmd *cobra.Command, path string) (*importer.Bundle, error) {
	fallback := importer.FormatFromPath(path)
	format, err := importer.ParseFormat(flagString(cmd, "input-format"), fallback)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path) //nolint:gosec // User-provided evidence path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open evidence file: %w", err)
		}
		defer f.Close()
		r = f
	}

	bundle, err := importer.Read(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence from %s: %w", path, err)
	}
	return bundle, nil
}
