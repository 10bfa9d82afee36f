package main

import (
	"github.com/spf13/cobra"

	"orc/internal/config"
	"orc/internal/ignore"
	"orc/internal/indexer"
	"orc/internal/query"
	"orc/internal/storage"
)

var scanForce bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index the repository and print the full analysis report",
	Long: `Runs 'orc index' followed by 'orc report' in one step: parse, resolve,
store, then report complexity, dead code, cycles, and hotspots.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "Re-index even if the tree is unchanged")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	logger := newLogger()

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	matcher, err := ignore.Load(repoRoot, cfg.DeadCode.ExcludePatterns)
	if err != nil {
		return err
	}

	db, err := storage.Open(repoRoot, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	idx := indexer.New(repoRoot, cfg, db, matcher, logger)
	if _, err := idx.Run(newContext(), scanForce); err != nil {
		return err
	}

	engine := query.NewEngine(db, cfg, matcher, logger)
	report, err := engine.BuildReport()
	if err != nil {
		return err
	}
	return printResponse(report)
}
