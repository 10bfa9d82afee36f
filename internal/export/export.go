// Package export renders the index for other tools: a gzip-friendly JSON
// dump and a SCIP protobuf index.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"orc/internal/storage"
	"orc/internal/version"
)

// Dump is the full index contents in one JSON-serializable value.
type Dump struct {
	GeneratedAt  time.Time                `json:"generatedAt"`
	Tool         string                   `json:"tool"`
	Files        []storage.File           `json:"files"`
	Functions    []storage.FunctionInfo   `json:"functions"`
	Classes      []storage.Class          `json:"classes"`
	Imports      []storage.Import         `json:"imports"`
	Dependencies []storage.FileDependency `json:"dependencies"`
	Calls        []storage.ResolvedCall   `json:"calls"`
	EntryPoints  []storage.EntryPoint     `json:"entryPoints"`
}

// Collect reads every index table into a Dump.
func Collect(db *storage.DB) (*Dump, error) {
	dump := &Dump{
		GeneratedAt: time.Now().UTC(),
		Tool:        "orc " + version.Version,
	}

	var err error
	if dump.Files, err = db.AllFiles(); err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}
	if dump.Functions, err = db.AllFunctions(); err != nil {
		return nil, fmt.Errorf("reading functions: %w", err)
	}
	if dump.Classes, err = db.AllClasses(); err != nil {
		return nil, fmt.Errorf("reading classes: %w", err)
	}
	if dump.Imports, err = db.AllImports(); err != nil {
		return nil, fmt.Errorf("reading imports: %w", err)
	}
	if dump.Dependencies, err = db.AllDependencies(); err != nil {
		return nil, fmt.Errorf("reading dependencies: %w", err)
	}
	if dump.Calls, err = db.AllCalls(); err != nil {
		return nil, fmt.Errorf("reading calls: %w", err)
	}
	if dump.EntryPoints, err = db.AllEntryPoints(); err != nil {
		return nil, fmt.Errorf("reading entry points: %w", err)
	}
	return dump, nil
}

// WriteJSON writes the dump as indented JSON.
func WriteJSON(w io.Writer, dump *Dump) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

// CreateOutput opens path for writing, wrapping in a gzip writer when the
// name ends in .gz. Closing the returned writer flushes everything.
func CreateOutput(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	return &gzipFile{gz: gzip.NewWriter(f), file: f}, nil
}

type gzipFile struct {
	gz   *gzip.Writer
	file *os.File
}

func (g *gzipFile) Write(p []byte) (int, error) { return g.gz.Write(p) }

func (g *gzipFile) Close() error {
	if err := g.gz.Close(); err != nil {
		g.file.Close()
		return err
	}
	return g.file.Close()
}
