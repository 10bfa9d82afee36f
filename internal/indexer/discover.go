package indexer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"orc/internal/config"
	"orc/internal/ignore"
	"orc/internal/parser"
	"orc/internal/paths"
)

// candidate is one discovered source file.
type candidate struct {
	path     string // canonical repo-relative path
	language parser.Language
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"build":         {},
	"dist":          {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	".orc":          {},
}

// discover walks the repo and returns indexable files in sorted order:
// supported extension, within the configured languages, not ignored, not
// over the size limit.
func discover(repoRoot string, cfg *config.Config, matcher *ignore.Matcher) ([]candidate, error) {
	langSet := make(map[parser.Language]struct{}, len(cfg.Languages))
	for _, l := range cfg.Languages {
		langSet[parser.Language(l)] = struct{}{}
	}

	excluded := make(map[string]struct{}, len(skipDirs))
	for dir := range skipDirs {
		excluded[dir] = struct{}{}
	}
	for _, dir := range cfg.Index.ExcludeDirs {
		excluded[dir] = struct{}{}
	}

	var results []candidate

	err := filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		name := d.Name()
		if d.IsDir() {
			if path == repoRoot {
				return nil
			}
			if _, skip := excluded[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		lang, ok := parser.LanguageFromExtension(filepath.Ext(name))
		if !ok {
			return nil
		}
		if len(langSet) > 0 {
			if _, ok := langSet[lang]; !ok {
				return nil
			}
		}

		canonical, err := paths.Canonicalize(path, repoRoot)
		if err != nil {
			return nil
		}
		if matcher != nil && matcher.Match(canonical) {
			return nil
		}

		if cfg.Index.MaxFileSizeBytes > 0 {
			if info, err := d.Info(); err != nil || info.Size() > int64(cfg.Index.MaxFileSizeBytes) {
				return nil
			}
		}

		results = append(results, candidate{path: canonical, language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })
	return results, nil
}
