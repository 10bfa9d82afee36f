package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orc/internal/ignore"
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore [pattern]",
	Short: "List or add ignore patterns",
	Long: `Without arguments, lists the active patterns from .orc/ignore.
With a pattern argument, appends it to .orc/ignore.

Patterns use gitignore syntax and apply both to indexing and to every
query, so adding one takes effect without re-indexing.

Examples:
  orc ignore                 # List active patterns
  orc ignore 'generated/'    # Exclude a directory
  orc ignore '*_pb2.py'      # Exclude generated protobuf modules`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIgnore,
}

func init() {
	rootCmd.AddCommand(ignoreCmd)
}

func runIgnore(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()

	if len(args) == 0 {
		matcher, err := ignore.Load(repoRoot, nil)
		if err != nil {
			return err
		}
		patterns := matcher.Patterns()
		if len(patterns) == 0 {
			fmt.Println("No ignore patterns configured.")
			return nil
		}
		for _, p := range patterns {
			fmt.Println(p)
		}
		return nil
	}

	if err := ignore.AddPattern(repoRoot, args[0]); err != nil {
		return err
	}
	fmt.Printf("Added ignore pattern: %s\n", args[0])
	return nil
}
