package main

import (
	"github.com/spf13/cobra"

	"orc/internal/version"
)

var (
	// formatFlag is the CLI --format flag value (human or json)
	formatFlag string
	// quietFlag suppresses progress logging
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "orc",
	Short: "ORC - codebase indexing and analysis",
	Long: `ORC indexes Python and JavaScript/TypeScript codebases into a local SQLite
database and runs static analyses over it: complexity scoring, dead-code
detection, circular-dependency detection, and hotspot ranking. The chat
command answers questions about the indexed code through an LLM provider.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("orc version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "human",
		"Output format: human or json")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress progress output")
}
