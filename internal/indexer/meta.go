package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// MetaVersion is the current metadata format version.
	MetaVersion = 1

	metaFile = "index-meta.json"
)

// Meta records what one index run produced, for freshness checks and
// status output. TreeHash digests every indexed file's content hash, so a
// byte-identical tree skips re-indexing.
type Meta struct {
	Version   int       `json:"version"`
	RunID     string    `json:"runId"`
	CreatedAt time.Time `json:"createdAt"`
	TreeHash  string    `json:"treeHash"`
	FileCount int       `json:"fileCount"`
	Duration  string    `json:"duration"`
	Indexer   string    `json:"indexer"`
}

// LoadMeta reads metadata from the .orc directory. A missing file or a
// version mismatch returns nil without error.
func LoadMeta(orcDir string) (*Meta, error) {
	path := filepath.Join(orcDir, metaFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index metadata: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing index metadata: %w", err)
	}
	if meta.Version != MetaVersion {
		return nil, nil
	}
	return &meta, nil
}

// Save writes metadata to the .orc directory.
func (m *Meta) Save(orcDir string) error {
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		return fmt.Errorf("creating .orc directory: %w", err)
	}

	m.Version = MetaVersion

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(orcDir, metaFile), data, 0644); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}
