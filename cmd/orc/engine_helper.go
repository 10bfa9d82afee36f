package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"orc/internal/config"
	orcerrors "orc/internal/errors"
	"orc/internal/ignore"
	"orc/internal/logging"
	"orc/internal/query"
	"orc/internal/storage"
)

var (
	engineOnce   sync.Once
	sharedEngine *query.Engine
	sharedDB     *storage.DB
	engineErr    error
)

// getEngine returns a shared query engine, lazily opened on first use.
func getEngine(repoRoot string, logger *logging.Logger) (*query.Engine, error) {
	engineOnce.Do(func() {
		if !storage.Exists(repoRoot) {
			engineErr = orcerrors.New(orcerrors.IndexMissing,
				"no index found, run 'orc index' first", nil)
			return
		}

		cfg, err := config.LoadConfig(repoRoot)
		if err != nil {
			logger.Warn("failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}

		matcher, err := ignore.Load(repoRoot, cfg.DeadCode.ExcludePatterns)
		if err != nil {
			engineErr = err
			return
		}

		db, err := storage.Open(repoRoot, logger)
		if err != nil {
			engineErr = fmt.Errorf("opening database: %w", err)
			return
		}

		sharedDB = db
		sharedEngine = query.NewEngine(db, cfg, matcher, logger)
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine(repoRoot string, logger *logging.Logger) *query.Engine {
	engine, err := getEngine(repoRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return engine
}

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// newContext creates a context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger builds the command logger honoring --format and --quiet.
func newLogger() *logging.Logger {
	logFormat := logging.HumanFormat
	if formatFlag == "json" {
		logFormat = logging.JSONFormat
	}
	level := logging.InfoLevel
	if quietFlag {
		level = logging.ErrorLevel
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  level,
	})
}
