package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"orc/internal/ignore"
	"orc/internal/logging"
	"orc/internal/parser"
	"orc/internal/paths"
)

// DefaultDebounce is the quiet period before a change triggers a re-index.
const DefaultDebounce = 2 * time.Second

// skipDirs mirrors the indexer's directory exclusions: changes inside
// these can never affect the index.
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

// Watcher observes the repository tree and invokes onChange after a burst
// of relevant file events settles.
type Watcher struct {
	repoRoot  string
	matcher   *ignore.Matcher
	logger    *logging.Logger
	debouncer *Debouncer
	onChange  func()

	fsw *fsnotify.Watcher
}

// New builds a watcher over repoRoot. onChange runs on the watcher's
// goroutine after each debounced burst of source changes.
func New(repoRoot string, matcher *ignore.Matcher, logger *logging.Logger, debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		repoRoot:  repoRoot,
		matcher:   matcher,
		logger:    logger,
		debouncer: NewDebouncer(debounce),
		onChange:  onChange,
		fsw:       fsw,
	}
	if err := w.addTree(repoRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers every watchable directory under root. fsnotify does
// not recurse, so each directory needs its own watch.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root {
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		}
		return w.fsw.Add(path)
	})
}

// relevant reports whether an event path could change the index.
func (w *Watcher) relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	if _, ok := parser.LanguageFromExtension(ext); !ok {
		return false
	}
	canonical, err := paths.Canonicalize(path, w.repoRoot)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(canonical, "/") {
		if _, skip := skipDirs[segment]; skip {
			return false
		}
	}
	if w.matcher != nil && w.matcher.Match(canonical) {
		return false
	}
	return true
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			// New directories must be watched before files land in them.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if name := filepath.Base(event.Name); !strings.HasPrefix(name, ".") {
						if _, skip := skipDirs[name]; !skip {
							_ = w.addTree(event.Name)
						}
					}
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("source change detected", map[string]interface{}{
				"path": event.Name,
				"op":   event.Op.String(),
			})
			w.debouncer.Trigger(w.onChange)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
