package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index state and record counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot := mustGetRepoRoot()
		engine := mustGetEngine(repoRoot, newLogger())
		status, err := engine.GetStatus(repoRoot)
		if err != nil {
			return err
		}
		return printResponse(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
