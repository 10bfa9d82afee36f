package storage

import (
	"io"
	"testing"

	"orc/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Files: []File{
			{ID: 1, Path: "app/main.py", Language: "python", LineCount: 40, HasMainGuard: true, Provenance: "treesitter", ContentHash: "aaaa"},
			{ID: 2, Path: "app/util.py", Language: "python", LineCount: 12, Provenance: "treesitter", ContentHash: "bbbb"},
		},
		Functions: []Function{
			{ID: 1, FileID: 1, Name: "main", StartLine: 5, EndLine: 20, Calls: []string{"helper"}, Complexity: 3, Exported: true},
			{ID: 2, FileID: 2, Name: "helper", StartLine: 1, EndLine: 6, Params: []string{"x"}, Complexity: 1, Exported: true},
			{ID: 3, FileID: 2, Name: "_unused", StartLine: 8, EndLine: 12, Complexity: 1},
		},
		Classes: []Class{
			{ID: 1, FileID: 1, Name: "App", StartLine: 22, Bases: []string{"Base"}},
		},
		Imports: []Import{
			{ID: 1, FileID: 1, Module: "util", Symbols: []string{"helper"}, Line: 1, Relative: true, Level: 1, Raw: "from .util import helper"},
		},
		Dependencies: []FileDependency{
			{SourceFileID: 1, TargetFileID: 2, Line: 1},
		},
		Calls: []ResolvedCall{
			{ID: 1, CallerFunctionID: 1, CalleeFunctionID: 2, CalleeName: "helper", Outcome: OutcomeResolved},
			{ID: 2, CallerFunctionID: 2, CalleeName: "len", Outcome: OutcomeExternal},
		},
		EntryPoints: []EntryPoint{
			{ID: 1, FileID: 1, FunctionID: 1, Kind: EntryMainGuard, Name: "main", Confidence: 0.9},
		},
	}
}

func TestReplaceAllAndCounts(t *testing.T) {
	db := openTestDB(t)

	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	counts, err := db.GetCounts()
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if counts.Files != 2 || counts.Functions != 3 || counts.Classes != 1 {
		t.Errorf("counts = %+v", counts)
	}
	if counts.ResolvedCalls != 1 || counts.ExternalCalls != 1 || counts.UnresolvedCalls != 0 {
		t.Errorf("call counts = %+v", counts)
	}
	if counts.Dependencies != 1 || counts.EntryPoints != 1 {
		t.Errorf("edge counts = %+v", counts)
	}
}

func TestReplaceAllIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("first ReplaceAll() error = %v", err)
	}
	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("second ReplaceAll() error = %v", err)
	}

	counts, err := db.GetCounts()
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if counts.Files != 2 || counts.Functions != 3 {
		t.Errorf("counts after re-index = %+v, want same as single index", counts)
	}
}

func TestFunctionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	fns, err := db.AllFunctions()
	if err != nil {
		t.Fatalf("AllFunctions() error = %v", err)
	}
	if len(fns) != 3 {
		t.Fatalf("got %d functions, want 3", len(fns))
	}

	// Ordered by path then start line: main.py first.
	main := fns[0]
	if main.Name != "main" || main.FilePath != "app/main.py" || main.Language != "python" {
		t.Errorf("main = %+v", main)
	}
	if len(main.Calls) != 1 || main.Calls[0] != "helper" {
		t.Errorf("Calls = %v, want [helper]", main.Calls)
	}
	if main.Lines() != 16 {
		t.Errorf("Lines() = %d, want 16", main.Lines())
	}

	helper := fns[1]
	if helper.Name != "helper" || len(helper.Params) != 1 || helper.Params[0] != "x" {
		t.Errorf("helper = %+v", helper)
	}
}

func TestThresholdQueries(t *testing.T) {
	db := openTestDB(t)
	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	complex, err := db.FunctionsByMinComplexity(2)
	if err != nil {
		t.Fatalf("FunctionsByMinComplexity() error = %v", err)
	}
	if len(complex) != 1 || complex[0].Name != "main" {
		t.Errorf("complex = %+v, want only main", complex)
	}

	long, err := db.FunctionsByMinLines(10)
	if err != nil {
		t.Fatalf("FunctionsByMinLines() error = %v", err)
	}
	if len(long) != 1 || long[0].Name != "main" {
		t.Errorf("long = %+v, want only main", long)
	}

	large, err := db.FilesByMinLines(20)
	if err != nil {
		t.Fatalf("FilesByMinLines() error = %v", err)
	}
	if len(large) != 1 || large[0].Path != "app/main.py" {
		t.Errorf("large = %+v, want only main.py", large)
	}
}

func TestCallAggregates(t *testing.T) {
	db := openTestDB(t)
	snap := sampleSnapshot()
	snap.Calls = append(snap.Calls, ResolvedCall{
		ID: 3, CallerFunctionID: 1, CalleeName: "process", Outcome: OutcomeUnresolved,
	})
	if err := db.ReplaceAll(snap); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	incoming, err := db.IncomingResolvedCounts()
	if err != nil {
		t.Fatalf("IncomingResolvedCounts() error = %v", err)
	}
	if incoming[2] != 1 {
		t.Errorf("incoming[helper] = %d, want 1", incoming[2])
	}
	if _, ok := incoming[3]; ok {
		t.Error("_unused should have no incoming edges")
	}

	unresolved, err := db.UnresolvedCalleeNames()
	if err != nil {
		t.Fatalf("UnresolvedCalleeNames() error = %v", err)
	}
	if unresolved["process"] != 1 {
		t.Errorf("unresolved[process] = %d, want 1", unresolved["process"])
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.ReplaceAll(sampleSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	db.Close()

	if !Exists(dir) {
		t.Fatal("Exists() = false after indexing")
	}

	db, err = Open(dir, testLogger())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	counts, err := db.GetCounts()
	if err != nil {
		t.Fatalf("GetCounts() error = %v", err)
	}
	if counts.Files != 2 {
		t.Errorf("Files = %d after reopen, want 2", counts.Files)
	}
}
