package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"orc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot := mustGetRepoRoot()
		cfg, err := config.LoadConfig(repoRoot)
		if err != nil {
			return err
		}
		if currentFormat() == FormatJSON {
			return printResponse(cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a dot-separated configuration key and persists the result to
.orc/config.yaml.

Examples:
  orc config set thresholds.complexityHigh 12
  orc config set deadcode.minConfidence 0.8
  orc config set ai.provider anthropic`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot := mustGetRepoRoot()
		cfg, err := config.SetValue(repoRoot, args[0], args[1])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot := mustGetRepoRoot()
		cfg := config.DefaultConfig()
		if err := cfg.Save(repoRoot); err != nil {
			return err
		}
		fmt.Println("Configuration reset to defaults.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	rootCmd.AddCommand(configCmd)
}
