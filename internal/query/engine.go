// Package query is the read side of the index: every CLI command that
// answers a question goes through the Engine here. The ignore matcher is
// applied to each result set, so patterns added after an index run take
// effect immediately without re-indexing.
package query

import (
	"github.com/bmatcuk/doublestar/v4"

	"orc/internal/complexity"
	"orc/internal/config"
	"orc/internal/deadcode"
	orcerrors "orc/internal/errors"
	"orc/internal/hotspots"
	"orc/internal/ignore"
	"orc/internal/logging"
	"orc/internal/resolver"
	"orc/internal/storage"
)

// Engine answers queries over a stored index.
type Engine struct {
	db      *storage.DB
	cfg     *config.Config
	logger  *logging.Logger
	matcher *ignore.Matcher
}

// NewEngine creates a query engine.
func NewEngine(db *storage.DB, cfg *config.Config, matcher *ignore.Matcher, logger *logging.Logger) *Engine {
	return &Engine{
		db:      db,
		cfg:     cfg,
		logger:  logger,
		matcher: matcher,
	}
}

// ignored reports whether a canonical path is filtered from query output.
func (e *Engine) ignored(path string) bool {
	return e.matcher != nil && e.matcher.Match(path)
}

func (e *Engine) filterFunctions(fns []storage.FunctionInfo) []storage.FunctionInfo {
	out := fns[:0]
	for _, fn := range fns {
		if !e.ignored(fn.FilePath) {
			out = append(out, fn)
		}
	}
	return out
}

func (e *Engine) filterFiles(files []storage.File) []storage.File {
	out := files[:0]
	for _, f := range files {
		if !e.ignored(f.Path) {
			out = append(out, f)
		}
	}
	return out
}

// FindComplex returns functions at or above the configured medium
// threshold, bucketed by severity.
func (e *Engine) FindComplex() (*complexity.Report, error) {
	fns, err := e.db.FunctionsByMinComplexity(e.cfg.Thresholds.ComplexityMedium)
	if err != nil {
		return nil, err
	}
	return complexity.NewAnalyzer(e.cfg.Thresholds).Analyze(e.filterFunctions(fns)), nil
}

// LargeResult lists oversized functions and files.
type LargeResult struct {
	Functions []storage.FunctionInfo `json:"functions"`
	Files     []storage.File         `json:"files"`
}

// FindLarge returns functions and files over the configured line limits.
func (e *Engine) FindLarge() (*LargeResult, error) {
	fns, err := e.db.FunctionsByMinLines(e.cfg.Thresholds.LargeFunctionLines)
	if err != nil {
		return nil, err
	}
	files, err := e.db.FilesByMinLines(e.cfg.Thresholds.LargeFileLines)
	if err != nil {
		return nil, err
	}
	return &LargeResult{
		Functions: e.filterFunctions(fns),
		Files:     e.filterFiles(files),
	}, nil
}

// FindDead runs dead-code detection over the stored edges.
func (e *Engine) FindDead() (*deadcode.Result, error) {
	fns, err := e.db.AllFunctions()
	if err != nil {
		return nil, err
	}
	incoming, err := e.db.IncomingResolvedCounts()
	if err != nil {
		return nil, err
	}
	unresolved, err := e.db.UnresolvedCalleeNames()
	if err != nil {
		return nil, err
	}
	entries, err := e.db.AllEntryPoints()
	if err != nil {
		return nil, err
	}
	files, err := e.db.AllFiles()
	if err != nil {
		return nil, err
	}

	entryFns := make(map[int64]bool)
	entryFiles := make(map[int64]bool)
	for _, ep := range entries {
		if ep.FunctionID != 0 {
			entryFns[ep.FunctionID] = true
		} else {
			entryFiles[ep.FileID] = true
		}
	}
	mainGuardFiles := make(map[int64]bool)
	for _, f := range files {
		if f.HasMainGuard {
			mainGuardFiles[f.ID] = true
		}
	}

	analyzer := deadcode.NewAnalyzer(e.cfg.DeadCode)
	return analyzer.Analyze(e.filterFunctions(fns), incoming, unresolved, entryFns, mainGuardFiles), nil
}

// FindPattern returns indexed files whose path matches a doublestar glob.
func (e *Engine) FindPattern(pattern string) ([]storage.File, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, orcerrors.New(orcerrors.PatternInvalid, "invalid glob pattern: "+pattern, nil)
	}
	files, err := e.db.AllFiles()
	if err != nil {
		return nil, err
	}

	var matched []storage.File
	for _, f := range files {
		if e.ignored(f.Path) {
			continue
		}
		if ok, _ := doublestar.Match(pattern, f.Path); ok {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// Cycles returns circular dependencies among non-ignored files.
func (e *Engine) Cycles() ([]resolver.Cycle, error) {
	files, err := e.db.AllFiles()
	if err != nil {
		return nil, err
	}
	deps, err := e.db.AllDependencies()
	if err != nil {
		return nil, err
	}

	keep := make(map[int64]bool, len(files))
	var kept []storage.File
	for _, f := range files {
		if !e.ignored(f.Path) {
			keep[f.ID] = true
			kept = append(kept, f)
		}
	}
	var keptDeps []storage.FileDependency
	for _, dep := range deps {
		if keep[dep.SourceFileID] && keep[dep.TargetFileID] {
			keptDeps = append(keptDeps, dep)
		}
	}
	return resolver.Cycles(kept, keptDeps), nil
}

// Hotspots ranks the riskiest functions and files.
func (e *Engine) Hotspots(limit int) (*hotspots.Report, error) {
	return hotspots.Analyze(e.db, limit)
}

// Counts returns the stored row counts.
func (e *Engine) Counts() (*storage.Counts, error) {
	return e.db.GetCounts()
}
