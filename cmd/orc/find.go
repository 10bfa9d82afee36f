package main

import (
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Query the index for code smells and files",
}

var findDeadCmd = &cobra.Command{
	Use:   "dead",
	Short: "List functions with no resolved incoming calls",
	Long: `Lists functions that nothing in the index calls, scored by confidence.
Entry points, exported names on allowlisted patterns, test files, and
dunder methods are excluded. Findings are heuristics, not proof.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		result, err := engine.FindDead()
		if err != nil {
			return err
		}
		return printResponse(result)
	},
}

var findComplexCmd = &cobra.Command{
	Use:   "complex",
	Short: "List functions over the complexity thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		report, err := engine.FindComplex()
		if err != nil {
			return err
		}
		return printResponse(report)
	},
}

var findLargeCmd = &cobra.Command{
	Use:   "large",
	Short: "List functions and files over the line-count limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		result, err := engine.FindLarge()
		if err != nil {
			return err
		}
		return printResponse(result)
	},
}

var findPatternCmd = &cobra.Command{
	Use:   "pattern <glob>",
	Short: "List indexed files matching a glob pattern",
	Long: `Matches repo-relative paths against a doublestar glob.

Examples:
  orc find pattern 'src/**/*.py'
  orc find pattern '**/test_*.py'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		files, err := engine.FindPattern(args[0])
		if err != nil {
			return err
		}
		return printResponse(files)
	},
}

var findCyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List circular import chains between files",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		cycles, err := engine.Cycles()
		if err != nil {
			return err
		}
		return printResponse(cycles)
	},
}

func init() {
	findCmd.AddCommand(findDeadCmd)
	findCmd.AddCommand(findComplexCmd)
	findCmd.AddCommand(findLargeCmd)
	findCmd.AddCommand(findPatternCmd)
	findCmd.AddCommand(findCyclesCmd)
	rootCmd.AddCommand(findCmd)
}
