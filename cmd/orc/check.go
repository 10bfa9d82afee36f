package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the health gate and exit non-zero on failure",
	Long: `Fails (exit code 1) when circular dependencies or critical-complexity
functions exist. High-confidence dead code is reported as a warning but
does not fail the check. Intended for CI.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine := mustGetEngine(mustGetRepoRoot(), newLogger())

	result, err := engine.Check()
	if err != nil {
		return err
	}

	out, err := FormatResponse(result, currentFormat())
	if err != nil {
		return err
	}
	fmt.Println(out)

	if !result.Passed {
		os.Exit(1)
	}
	return nil
}
