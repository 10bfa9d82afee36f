package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Index.Workers < 1 {
		t.Error("default worker count must be positive")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig on empty dir: %v", err)
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("missing config should yield defaults, got provider %q", cfg.AI.Provider)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Index.Workers = 8
	cfg.AI.Provider = "ollama"
	cfg.AI.BaseURL = "http://localhost:11434"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Index.Workers != 8 {
		t.Errorf("Workers = %d, want 8", loaded.Index.Workers)
	}
	if loaded.AI.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", loaded.AI.Provider)
	}
	if loaded.AI.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", loaded.AI.BaseURL)
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	orcDir := filepath.Join(root, ".orc")
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		t.Fatal(err)
	}
	partial := "version: 1\nindex:\n  workers: 2\n"
	if err := os.WriteFile(filepath.Join(orcDir, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Index.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Index.Workers)
	}
	// Unspecified sections keep defaults.
	if cfg.Thresholds.ComplexityCritical != 20 {
		t.Errorf("ComplexityCritical = %d, want default 20", cfg.Thresholds.ComplexityCritical)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad version", func(c *Config) { c.Version = 99 }, false},
		{"zero workers", func(c *Config) { c.Index.Workers = 0 }, false},
		{"inverted thresholds", func(c *Config) { c.Thresholds.ComplexityHigh = 30 }, false},
		{"confidence out of range", func(c *Config) { c.DeadCode.MinConfidence = 1.5 }, false},
		{"unknown provider", func(c *Config) { c.AI.Provider = "grok" }, false},
		{"unknown language", func(c *Config) { c.Languages = []string{"cobol"} }, false},
		{"tsx allowed", func(c *Config) { c.Languages = []string{"tsx"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() = %v, wantOK = %v", err, tt.wantOK)
			}
		})
	}
}

func TestSetValue(t *testing.T) {
	root := t.TempDir()

	cfg, err := SetValue(root, "thresholds.complexitycritical", "25")
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if cfg.Thresholds.ComplexityCritical != 25 {
		t.Errorf("ComplexityCritical = %d, want 25", cfg.Thresholds.ComplexityCritical)
	}

	// Value persists across a reload.
	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Thresholds.ComplexityCritical != 25 {
		t.Errorf("persisted ComplexityCritical = %d, want 25", loaded.Thresholds.ComplexityCritical)
	}
}

func TestSetValueRejectsInvalid(t *testing.T) {
	root := t.TempDir()
	if _, err := SetValue(root, "ai.provider", "grok"); err == nil {
		t.Fatal("SetValue should reject an unknown provider")
	}
	// Nothing should have been persisted.
	if _, err := os.Stat(filepath.Join(root, ".orc", "config.yaml")); !os.IsNotExist(err) {
		t.Error("invalid set should not write a config file")
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"true", true},
		{"42", 42},
		{"0.85", 0.85},
		{"openai", "openai"},
	}
	for _, tt := range tests {
		if got := coerceValue(tt.in); got != tt.want {
			t.Errorf("coerceValue(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}

	if got, ok := coerceValue("a, b,c").([]string); !ok || len(got) != 3 || got[1] != "b" {
		t.Errorf("coerceValue list = %v", got)
	}
}
