package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"orc/internal/export"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the full analysis report",
	Long: `Builds the combined analysis report from the current index: complexity,
dead code, circular dependencies, and hotspots.

With --output the report is written as JSON to a file instead of stdout;
a .gz suffix gzips it.

Examples:
  orc report
  orc report --format json
  orc report --output report.json.gz`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write JSON report to this file (.gz compresses)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	logger := newLogger()
	engine := mustGetEngine(repoRoot, logger)

	report, err := engine.BuildReport()
	if err != nil {
		return err
	}

	if reportOutput == "" {
		return printResponse(report)
	}

	w, err := export.CreateOutput(reportOutput)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		w.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", reportOutput)
	return nil
}
