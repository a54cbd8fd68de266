package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for privacyscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "privacyscan",
		Short: "Privacy scoring for website scan evidence",
		Long: `privacyscan scores the privacy posture of a website from the evidence a
crawler collected about it: trackers, third-party requests, cookies, missing
security headers, insecure resources, TLS grade, fingerprinting and the
presence of a privacy policy.

Scans and their evidence are stored in a local SQLite database so that sites
can be rescored and compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .privacyscan in current or home directory)")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewRescoreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
