package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"orc/internal/config"
	orcerrors "orc/internal/errors"
	"orc/internal/ignore"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ORC configuration",
	Long:  "Creates a .orc/ directory with a default config.yaml and an empty ignore file in the current repository root.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes the existing .orc directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return orcerrors.New(orcerrors.InternalError, "failed to get current directory", err)
	}

	orcDir := filepath.Join(repoRoot, ".orc")
	if _, statErr := os.Stat(orcDir); statErr == nil {
		if !initForce {
			// Already initialized is success, so init is safe in CI.
			fmt.Println("ORC already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(orcDir, "config.yaml"))
			fmt.Println("\nRun 'orc init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(orcDir); removeErr != nil {
			return orcerrors.New(orcerrors.InternalError, "failed to remove existing .orc directory", removeErr)
		}
	}

	if mkdirErr := os.MkdirAll(orcDir, 0755); mkdirErr != nil {
		return orcerrors.New(orcerrors.InternalError, "failed to create .orc directory", mkdirErr)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(repoRoot); err != nil {
		return orcerrors.New(orcerrors.InternalError, "failed to write config file", err)
	}

	ignorePath := filepath.Join(orcDir, ignore.IgnoreFileName)
	ignoreContent := "# gitignore-style patterns excluded from indexing and analysis\n"
	if err := os.WriteFile(ignorePath, []byte(ignoreContent), 0644); err != nil {
		return orcerrors.New(orcerrors.InternalError, "failed to write ignore file", err)
	}

	fmt.Println("Initialized ORC.")
	fmt.Printf("Configuration at: %s\n", filepath.Join(orcDir, "config.yaml"))
	fmt.Println("\nNext: run 'orc index' to build the index.")
	return nil
}
