package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orc/internal/export"
	"orc/internal/logging"
	"orc/internal/storage"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index for other tools",
	Long: `Writes the full index in an interchange format.

Formats:
  json    Complete JSON dump of every table (.gz output compresses)
  scip    SCIP protobuf index for code-intelligence tooling

Examples:
  orc export --format json --output index.json.gz
  orc export --format scip --output index.scip`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or scip")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (required)")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.WarnLevel,
	})

	if !storage.Exists(repoRoot) {
		return fmt.Errorf("no index found, run 'orc index' first")
	}
	db, err := storage.Open(repoRoot, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	dump, err := export.Collect(db)
	if err != nil {
		return err
	}

	w, err := export.CreateOutput(exportOutput)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		err = export.WriteJSON(w, dump)
	case "scip":
		err = export.WriteSCIP(w, repoRoot, dump)
	default:
		w.Close()
		return fmt.Errorf("unsupported export format: %s", exportFormat)
	}
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	fmt.Printf("Exported %s index to %s\n", exportFormat, exportOutput)
	return nil
}
