// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubbuild CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultConfigFile is used when no configuration path argument is given.
const defaultConfigFile = "buildconfig.toml"

// rootCmd is the base command for the pubbuild CLI.
var rootCmd = &cobra.Command{
	Use:   "pubbuild",
	Short: "Build hugo-academic publication pages from a bibTeX file",
	Long: `pubbuild converts bibliographic records from a bibTeX file into the
directory tree a static-site generator's "publication" content type expects:
one directory per publication holding an index.md with front matter, a
minimal cite.bib snippet, and an optional featured image.

A single configuration file (TOML or JSON) names the bibliography, the build
directory, per-publication overrides, and global defaults.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "tool config file (default: ./pubbuild.yaml or ~/.config/pubbuild/config.yaml)")
}

// initConfig sets up the tool-level settings layer: an optional YAML
// file plus PUBBUILD_* environment variables, supplying defaults for
// flags like --quiet and --report. The build configuration file itself
// is a separate, per-site input.
func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubbuild")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubbuild"))
		}
	}

	viper.SetEnvPrefix("PUBBUILD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using tool config:", viper.ConfigFileUsed())
	}
}

// configArg returns the build configuration path from the positional
// arguments, falling back to the default.
func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultConfigFile
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
