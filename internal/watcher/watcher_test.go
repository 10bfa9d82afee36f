package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"orc/internal/ignore"
	"orc/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	var runs int32
	d := NewDebouncer(30 * time.Millisecond)

	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&runs, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var runs int32
	d := NewDebouncer(20 * time.Millisecond)

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("runs = %d, want 0 after cancel", got)
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var runs int32
	d := NewDebouncer(time.Hour)

	d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	d.Flush()

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1 after flush", got)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d after second flush, want 1", got)
	}
}

func TestWatcherRelevance(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src", "node_modules/pkg", "generated"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	matcher := ignore.FromPatterns([]string{"generated/"})
	w, err := New(root, matcher, testLogger(), DefaultDebounce, func() {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.fsw.Close()

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "src", "app.py"), true},
		{filepath.Join(root, "src", "view.tsx"), true},
		{filepath.Join(root, "src", "notes.txt"), false},
		{filepath.Join(root, "src", ".hidden.py"), false},
		{filepath.Join(root, "node_modules", "pkg", "index.js"), false},
		{filepath.Join(root, "generated", "gen.py"), false},
	}
	for _, tc := range cases {
		if got := w.relevant(tc.path); got != tc.want {
			t.Errorf("relevant(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestWatcherTriggersOnSourceChange(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	w, err := New(root, nil, testLogger(), 20*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	if err := os.WriteFile(filepath.Join(srcDir, "app.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	root := t.TempDir()

	var runs int32
	w, err := New(root, nil, testLogger(), 20*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("docs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("runs = %d, want 0 for non-source change", got)
	}
}
