// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpmattern/pubbuild/internal/bibtex"
	"github.com/jpmattern/pubbuild/internal/build"
	"github.com/jpmattern/pubbuild/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build [configfile]",
	Short: "Build the publication directory tree",
	Long: `Build reads the configuration file (default: buildconfig.toml), parses
the bibliography it names, and writes one directory per configured
publication under the build directory: index.md, cite.bib, and the
featured image when one is configured.

Existing output files are overwritten. Failures of individual
publications are reported and the batch continues; pass
--keep-going=false to abort on the first failure instead. The command
exits nonzero when any publication failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configArg(args))
	if err != nil {
		return err
	}

	bibPath := cfg.BibtexFile
	if override, _ := cmd.Flags().GetString("bibtexfile"); override != "" {
		bibPath = override
	}
	bib, err := bibtex.ParseFile(bibPath)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	if !cmd.Flags().Changed("quiet") {
		quiet = viper.GetBool("quiet")
	}
	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}

	builder := build.New(cfg, bib)
	builder.KeepGoing, _ = cmd.Flags().GetBool("keep-going")

	summary, err := builder.Run(out)
	if err != nil {
		return err
	}

	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		reportPath = viper.GetString("report")
	}
	if reportPath != "" {
		if err := build.WriteReport(reportPath, summary); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d publication(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	buildCmd.Flags().String("bibtexfile", "", "bibliography to read (default: the one named in the configuration)")
	buildCmd.Flags().BoolP("quiet", "q", false, "suppress per-publication progress output")
	buildCmd.Flags().String("report", "", "write a YAML build report to this path")
	buildCmd.Flags().Bool("keep-going", true, "continue past per-publication failures")

	rootCmd.AddCommand(buildCmd)
}
