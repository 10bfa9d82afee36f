package query

import (
	"io"
	"strings"
	"testing"

	"orc/internal/config"
	"orc/internal/ignore"
	"orc/internal/logging"
	"orc/internal/storage"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

// seededEngine stores a small project with one cycle, one critical
// function, and one dead private function.
func seededEngine(t *testing.T, patterns ...string) *Engine {
	t.Helper()
	logger := testLogger()
	db, err := storage.Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	snap := &storage.Snapshot{
		Files: []storage.File{
			{ID: 1, Path: "app/main.py", Language: "python", LineCount: 600, HasMainGuard: true, Provenance: "treesitter", ContentHash: "a"},
			{ID: 2, Path: "app/util.py", Language: "python", LineCount: 50, Provenance: "treesitter", ContentHash: "b"},
			{ID: 3, Path: "legacy/old.py", Language: "python", LineCount: 30, Provenance: "treesitter", ContentHash: "c"},
		},
		Functions: []storage.Function{
			{ID: 1, FileID: 1, Name: "main", StartLine: 1, EndLine: 100, Complexity: 25, Exported: true},
			{ID: 2, FileID: 2, Name: "helper", StartLine: 1, EndLine: 10, Complexity: 2, Exported: true},
			{ID: 3, FileID: 3, Name: "_forgotten", StartLine: 1, EndLine: 5, Complexity: 1},
		},
		Dependencies: []storage.FileDependency{
			{SourceFileID: 1, TargetFileID: 2, Line: 1},
			{SourceFileID: 2, TargetFileID: 1, Line: 1},
		},
		Calls: []storage.ResolvedCall{
			{ID: 1, CallerFunctionID: 1, CalleeFunctionID: 2, CalleeName: "helper", Outcome: storage.OutcomeResolved},
		},
		EntryPoints: []storage.EntryPoint{
			{ID: 1, FileID: 1, FunctionID: 1, Kind: storage.EntryMainGuard, Name: "main", Confidence: 0.9},
		},
	}
	if err := db.ReplaceAll(snap); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	var matcher *ignore.Matcher
	if len(patterns) > 0 {
		matcher = ignore.FromPatterns(patterns)
	}
	return NewEngine(db, config.DefaultConfig(), matcher, logger)
}

func TestFindComplex(t *testing.T) {
	report, err := seededEngine(t).FindComplex()
	if err != nil {
		t.Fatalf("FindComplex() error = %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Name != "main" {
		t.Fatalf("findings = %+v, want only main", report.Findings)
	}
	if report.CriticalCount != 1 {
		t.Errorf("CriticalCount = %d, want 1", report.CriticalCount)
	}
}

func TestFindLarge(t *testing.T) {
	result, err := seededEngine(t).FindLarge()
	if err != nil {
		t.Fatalf("FindLarge() error = %v", err)
	}
	if len(result.Functions) != 1 || result.Functions[0].Name != "main" {
		t.Errorf("large functions = %+v, want main (100 lines)", result.Functions)
	}
	if len(result.Files) != 1 || result.Files[0].Path != "app/main.py" {
		t.Errorf("large files = %+v, want app/main.py", result.Files)
	}
}

func TestFindDead(t *testing.T) {
	result, err := seededEngine(t).FindDead()
	if err != nil {
		t.Fatalf("FindDead() error = %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Name != "_forgotten" {
		t.Fatalf("findings = %+v, want only _forgotten", result.Findings)
	}
}

func TestFindPattern(t *testing.T) {
	e := seededEngine(t)

	files, err := e.FindPattern("app/**")
	if err != nil {
		t.Fatalf("FindPattern() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 under app/", len(files))
	}

	if _, err := e.FindPattern("[bad"); err == nil {
		t.Error("invalid pattern accepted")
	}
}

func TestCycles(t *testing.T) {
	cycles, err := seededEngine(t).Cycles()
	if err != nil {
		t.Fatalf("Cycles() error = %v", err)
	}
	if len(cycles) != 1 || len(cycles[0]) != 2 {
		t.Fatalf("cycles = %+v, want one two-file cycle", cycles)
	}
}

func TestIgnorePatternsFilterQueries(t *testing.T) {
	e := seededEngine(t, "legacy/")

	dead, err := e.FindDead()
	if err != nil {
		t.Fatalf("FindDead() error = %v", err)
	}
	if len(dead.Findings) != 0 {
		t.Errorf("ignored path still reported dead: %+v", dead.Findings)
	}

	files, err := e.FindPattern("**/*.py")
	if err != nil {
		t.Fatalf("FindPattern() error = %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Path, "legacy/") {
			t.Errorf("ignored file in pattern results: %s", f.Path)
		}
	}
}

func TestCheck(t *testing.T) {
	result, err := seededEngine(t).Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Passed {
		t.Fatal("Passed = true with a cycle and a critical function present")
	}

	var cycleIssue, complexityIssue, deadWarning bool
	for _, issue := range result.Issues {
		switch {
		case strings.Contains(issue.Message, "circular dependency"):
			cycleIssue = issue.Severity == "error"
		case strings.Contains(issue.Message, "critical complexity"):
			complexityIssue = issue.Severity == "error"
		case strings.Contains(issue.Message, "dead code"):
			deadWarning = issue.Severity == "warning"
		}
	}
	if !cycleIssue || !complexityIssue || !deadWarning {
		t.Errorf("issues = %+v, want cycle error, complexity error, dead-code warning", result.Issues)
	}
}

func TestBuildReport(t *testing.T) {
	report, err := seededEngine(t).BuildReport()
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if report.Counts == nil || report.Counts.Files != 3 {
		t.Errorf("Counts = %+v", report.Counts)
	}
	if report.Complexity == nil || report.DeadCode == nil || report.Hotspots == nil {
		t.Error("report missing sections")
	}
	if len(report.Cycles) != 1 {
		t.Errorf("Cycles = %+v, want 1", report.Cycles)
	}
	if !strings.HasPrefix(report.Tool, "orc ") {
		t.Errorf("Tool = %q", report.Tool)
	}
}
