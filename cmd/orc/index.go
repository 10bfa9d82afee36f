package main

import (
	"github.com/spf13/cobra"

	"orc/internal/config"
	"orc/internal/ignore"
	"orc/internal/indexer"
	"orc/internal/storage"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Parse the repository and build the analysis index",
	Long: `Walks the repository, parses Python and JavaScript/TypeScript sources,
resolves imports and calls, and replaces the SQLite index wholesale.

An unchanged tree is skipped unless --force is given. Files matching
.orc/ignore patterns are excluded.

Examples:
  orc index            # Index, skipping if nothing changed
  orc index --force    # Re-index unconditionally`,
	RunE: runIndexCmd,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Re-index even if the tree is unchanged")
	rootCmd.AddCommand(indexCmd)
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
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
	stats, err := idx.Run(newContext(), indexForce)
	if err != nil {
		return err
	}

	return printResponse(stats)
}
