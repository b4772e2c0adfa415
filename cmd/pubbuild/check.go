// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/internal/check"
	"github.com/jpmattern/pubbuild/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [configfile]",
	Short: "Validate the configuration against the bibliography",
	Long: `Check loads the configuration and bibliography, resolves every
configured publication, and reports problems without writing any output.

Unresolvable citation keys are errors and make the command exit nonzero.
Duplicate bibliography keys and publications missing a title, authors,
or abstract are reported as warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configArg(args))
	if err != nil {
		return err
	}
	bib, err := bibtex.ParseFile(cfg.BibtexFile)
	if err != nil {
		return err
	}

	report := check.Run(cfg, bib)
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	if !report.OK() {
		return fmt.Errorf("%d error(s), %d warning(s)", len(report.Errors), len(report.Warnings))
	}
	fmt.Printf("%d publication(s) OK, %d warning(s)\n", len(cfg.Publications), len(report.Warnings))
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
