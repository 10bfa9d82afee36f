// Package indexer runs a full index pass: discover files, parse them in
// parallel, resolve imports and calls over the merged records, and store
// everything in one transaction. A run that fails partway leaves the
// previous index intact.
package indexer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"orc/internal/config"
	"orc/internal/entrypoints"
	"orc/internal/ignore"
	"orc/internal/logging"
	"orc/internal/parser"
	"orc/internal/paths"
	"orc/internal/resolver"
	"orc/internal/storage"
	"orc/internal/version"
)

// Stats summarizes one index run.
type Stats struct {
	RunID         string        `json:"runId"`
	Files         int           `json:"files"`
	Functions     int           `json:"functions"`
	Classes       int           `json:"classes"`
	Imports       int           `json:"imports"`
	Dependencies  int           `json:"dependencies"`
	Calls         int           `json:"calls"`
	EntryPoints   int           `json:"entryPoints"`
	ParseFailures int           `json:"parseFailures"`
	UpToDate      bool          `json:"upToDate"`
	Duration      time.Duration `json:"-"`
	DurationText  string        `json:"duration"`
}

// Indexer orchestrates index runs over one repository.
type Indexer struct {
	repoRoot string
	cfg      *config.Config
	db       *storage.DB
	logger   *logging.Logger
	matcher  *ignore.Matcher
}

// New creates an indexer.
func New(repoRoot string, cfg *config.Config, db *storage.DB, matcher *ignore.Matcher, logger *logging.Logger) *Indexer {
	return &Indexer{
		repoRoot: repoRoot,
		cfg:      cfg,
		db:       db,
		logger:   logger,
		matcher:  matcher,
	}
}

// parseResult pairs one file's records with its content hash.
type parseResult struct {
	records *parser.FlatRecords
	hash    string
}

// Run executes a full index pass. Unless force is set, a tree whose content
// hash matches the last run is skipped.
func (ix *Indexer) Run(ctx context.Context, force bool) (*Stats, error) {
	start := time.Now()
	orcDir := paths.Join(ix.repoRoot, ".orc")

	lock, err := AcquireLock(orcDir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	candidates, err := discover(ix.repoRoot, ix.cfg, ix.matcher)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	ix.logger.Debug("Discovered source files", map[string]interface{}{
		"count": len(candidates),
	})

	results, failures, err := ix.parseAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	treeHash := hashTree(results)
	if !force {
		if meta, err := LoadMeta(orcDir); err == nil && meta != nil && meta.TreeHash == treeHash {
			ix.logger.Info("Index is up to date", map[string]interface{}{
				"files": meta.FileCount,
			})
			elapsed := time.Since(start)
			return &Stats{
				RunID:        meta.RunID,
				Files:        meta.FileCount,
				UpToDate:     true,
				Duration:     elapsed,
				DurationText: elapsed.Round(time.Millisecond).String(),
			}, nil
		}
	}

	snap := merge(results)
	snap.EntryPoints = entrypoints.Detect(ix.repoRoot, snap.Files, snap.Functions, ix.logger)

	resolved := resolver.Resolve(snap.Files, snap.Functions, snap.Imports)
	snap.Dependencies = resolved.Dependencies
	snap.Calls = resolved.Calls

	if err := ix.db.ReplaceAll(snap); err != nil {
		return nil, fmt.Errorf("storing index: %w", err)
	}

	duration := time.Since(start)
	meta := &Meta{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		TreeHash:  treeHash,
		FileCount: len(snap.Files),
		Duration:  duration.Round(time.Millisecond).String(),
		Indexer:   "orc " + version.Version,
	}
	if err := meta.Save(orcDir); err != nil {
		return nil, err
	}

	stats := &Stats{
		RunID:         meta.RunID,
		Files:         len(snap.Files),
		Functions:     len(snap.Functions),
		Classes:       len(snap.Classes),
		Imports:       len(snap.Imports),
		Dependencies:  len(snap.Dependencies),
		Calls:         len(snap.Calls),
		EntryPoints:   len(snap.EntryPoints),
		ParseFailures: failures,
		Duration:      duration,
		DurationText:  duration.Round(time.Millisecond).String(),
	}

	ix.logger.Info("Index run complete", map[string]interface{}{
		"runId":     stats.RunID,
		"files":     stats.Files,
		"functions": stats.Functions,
		"duration":  stats.DurationText,
	})
	return stats, nil
}

// parseAll fans the candidates out over a bounded worker pool. Each worker
// builds its own parsers; parse failures are logged and counted, never
// fatal.
func (ix *Indexer) parseAll(ctx context.Context, candidates []candidate) ([]parseResult, int, error) {
	workers := ix.cfg.Index.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	results := make([]parseResult, 0, len(candidates))
	failures := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			source, err := os.ReadFile(paths.Join(ix.repoRoot, cand.path))
			if err != nil {
				ix.logger.Warn("Failed to read file", map[string]interface{}{
					"path":  cand.path,
					"error": err.Error(),
				})
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			p, err := parser.ForLanguage(cand.language)
			if err != nil {
				return err
			}
			records, err := p.Parse(cand.path, source)
			if err != nil {
				// Fall back to the regex parser before giving up on the file.
				records, err = parser.NewRegexParser(cand.language).Parse(cand.path, source)
			}
			if err != nil {
				ix.logger.Warn("Failed to parse file", map[string]interface{}{
					"path":  cand.path,
					"error": err.Error(),
				})
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			results = append(results, parseResult{
				records: records,
				hash:    fmt.Sprintf("%016x", xxhash.Sum64(source)),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].records.File.Path < results[j].records.File.Path
	})
	return results, failures, nil
}

// merge flattens parse results into one snapshot with sequential IDs.
// Results are sorted by path first, so IDs are stable for a given tree.
func merge(results []parseResult) *storage.Snapshot {
	snap := &storage.Snapshot{}
	var fnID, clsID, impID int64

	for i, res := range results {
		fileID := int64(i + 1)
		rec := res.records

		snap.Files = append(snap.Files, storage.File{
			ID:           fileID,
			Path:         rec.File.Path,
			Language:     string(rec.File.Language),
			LineCount:    rec.File.LineCount,
			HasMainGuard: rec.File.HasMainGuard,
			Provenance:   string(rec.File.Provenance),
			ContentHash:  res.hash,
		})

		for _, fn := range rec.Functions {
			fnID++
			snap.Functions = append(snap.Functions, storage.Function{
				ID:         fnID,
				FileID:     fileID,
				Name:       fn.Name,
				StartLine:  fn.StartLine,
				EndLine:    fn.EndLine,
				Params:     fn.Params,
				Calls:      fn.Calls,
				Decorators: fn.Decorators,
				Complexity: fn.Complexity,
				Exported:   fn.Exported,
			})
		}
		for _, cls := range rec.Classes {
			clsID++
			snap.Classes = append(snap.Classes, storage.Class{
				ID:        clsID,
				FileID:    fileID,
				Name:      cls.Name,
				StartLine: cls.StartLine,
				Bases:     cls.Bases,
			})
		}
		for _, imp := range rec.Imports {
			impID++
			snap.Imports = append(snap.Imports, storage.Import{
				ID:       impID,
				FileID:   fileID,
				Module:   imp.Module,
				Symbols:  imp.Symbols,
				Line:     imp.Line,
				Relative: imp.Relative,
				Level:    imp.Level,
				Raw:      imp.Raw,
			})
		}
	}

	return snap
}

// hashTree digests the sorted per-file content hashes into one tree hash.
func hashTree(results []parseResult) string {
	digest := xxhash.New()
	for _, res := range results {
		digest.WriteString(res.records.File.Path)
		digest.WriteString(":")
		digest.WriteString(res.hash)
		digest.WriteString("\n")
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}
