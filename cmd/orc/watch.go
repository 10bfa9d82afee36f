package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"orc/internal/config"
	"orc/internal/ignore"
	"orc/internal/indexer"
	"orc/internal/storage"
	"orc/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index automatically when source files change",
	Long: `Watches the repository and re-runs the indexer after changes to source
files settle. Each run replaces the index wholesale, same as 'orc index'.
Stops on Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"Quiet period before a change triggers re-indexing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := signal.NotifyContext(newContext(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reindex := func() {
		stats, err := idx.Run(ctx, false)
		if err != nil {
			logger.Error("re-index failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if !stats.UpToDate {
			logger.Info("re-indexed", map[string]interface{}{
				"files":    stats.Files,
				"duration": stats.DurationText,
			})
		}
	}

	// Initial run so the watch starts from a fresh index.
	reindex()

	w, err := watcher.New(repoRoot, matcher, logger, watchDebounce, reindex)
	if err != nil {
		return err
	}

	fmt.Println("Watching for changes. Press Ctrl-C to stop.")
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
