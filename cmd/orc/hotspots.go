package main

import (
	"github.com/spf13/cobra"
)

var hotspotsLimit int

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Rank the most-called, most complex, largest, and most coupled code",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := mustGetEngine(mustGetRepoRoot(), newLogger())
		report, err := engine.Hotspots(hotspotsLimit)
		if err != nil {
			return err
		}
		return printResponse(report)
	},
}

func init() {
	hotspotsCmd.Flags().IntVarP(&hotspotsLimit, "limit", "n", 10, "Maximum entries per ranking")
	rootCmd.AddCommand(hotspotsCmd)
}
