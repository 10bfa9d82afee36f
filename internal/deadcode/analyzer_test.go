package deadcode

import (
	"testing"

	"orc/internal/config"
	"orc/internal/storage"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.DefaultConfig().DeadCode)
}

func info(id int64, name, path string, exported bool, decorators ...string) storage.FunctionInfo {
	return storage.FunctionInfo{
		Function: storage.Function{
			ID: id, Name: name, StartLine: 1, EndLine: 5,
			Exported: exported, Decorators: decorators,
		},
		FilePath: path,
	}
}

func TestCalledFunctionIsNotDead(t *testing.T) {
	functions := []storage.FunctionInfo{
		info(1, "main", "a.py", true),
		info(2, "helper", "b.py", true),
	}
	incoming := map[int64]int{2: 1}
	entries := map[int64]bool{1: true}

	result := newTestAnalyzer().Analyze(functions, incoming, nil, entries, nil)
	if len(result.Findings) != 0 {
		t.Fatalf("findings = %+v, want none: helper is called, main is an entry point", result.Findings)
	}
}

func TestUnreferencedPrivateFunctionIsDead(t *testing.T) {
	functions := []storage.FunctionInfo{
		info(1, "_orphan", "util.py", false),
	}
	result := newTestAnalyzer().Analyze(functions, nil, nil, nil, nil)

	if len(result.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(result.Findings))
	}
	finding := result.Findings[0]
	if finding.Name != "_orphan" {
		t.Errorf("Name = %q", finding.Name)
	}
	if finding.Confidence != baseConfidence {
		t.Errorf("Confidence = %f, want bare base %f", finding.Confidence, baseConfidence)
	}
}

func TestConfidenceWeights(t *testing.T) {
	tests := []struct {
		name string
		fn   storage.FunctionInfo
		want float64
	}{
		{
			"exported",
			info(1, "orphan", "util.py", true),
			baseConfidence * exportedWeight,
		},
		{
			"decorated",
			info(1, "_orphan", "util.py", false, "app.task"),
			baseConfidence * decoratedWeight,
		},
		{
			"exported and decorated",
			info(1, "orphan", "util.py", true, "app.task"),
			baseConfidence * exportedWeight * decoratedWeight,
		},
	}

	// MinConfidence 0 so every weighted finding is visible.
	cfg := config.DefaultConfig().DeadCode
	cfg.MinConfidence = 0
	a := NewAnalyzer(cfg)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze([]storage.FunctionInfo{tt.fn}, nil, nil, nil, nil)
			if len(result.Findings) != 1 {
				t.Fatalf("got %d findings, want 1", len(result.Findings))
			}
			got := result.Findings[0].Confidence
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Confidence = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAmbiguousNameLowersConfidence(t *testing.T) {
	cfg := config.DefaultConfig().DeadCode
	cfg.MinConfidence = 0
	a := NewAnalyzer(cfg)

	functions := []storage.FunctionInfo{info(1, "_process", "util.py", false)}
	unresolved := map[string]int{"_process": 2}

	result := a.Analyze(functions, nil, unresolved, nil, nil)
	if len(result.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(result.Findings))
	}
	want := baseConfidence * ambiguousNameWeight
	if got := result.Findings[0].Confidence; got != want {
		t.Errorf("Confidence = %f, want %f", got, want)
	}
}

func TestMinConfidenceFloor(t *testing.T) {
	// Default floor is 0.7; an exported+decorated function lands well below.
	functions := []storage.FunctionInfo{
		info(1, "orphan", "util.py", true, "app.task"),
	}
	result := newTestAnalyzer().Analyze(functions, nil, nil, nil, nil)
	if len(result.Findings) != 0 {
		t.Fatalf("findings = %+v, want filtered out below floor", result.Findings)
	}
	if result.BelowMinScore != 1 {
		t.Errorf("BelowMinScore = %d, want 1", result.BelowMinScore)
	}
}

func TestExclusions(t *testing.T) {
	cfg := config.DefaultConfig().DeadCode
	cfg.MinConfidence = 0
	cfg.DynamicAllowlist = []string{"on_*"}
	cfg.ExcludePatterns = []string{"generated/**"}
	a := NewAnalyzer(cfg)

	functions := []storage.FunctionInfo{
		info(1, "Model.__repr__", "models.py", false),
		info(2, "test_login", "auth.py", false),
		info(3, "helper", "tests/util.py", true),
		info(4, "on_message", "bot.py", false),
		info(5, "anything", "generated/client.py", false),
		info(6, "_really_dead", "app.py", false),
	}

	result := a.Analyze(functions, nil, nil, nil, nil)
	if len(result.Findings) != 1 || result.Findings[0].Name != "_really_dead" {
		t.Fatalf("findings = %+v, want only _really_dead", result.Findings)
	}
	if result.Excluded != 5 {
		t.Errorf("Excluded = %d, want 5", result.Excluded)
	}
}

// Removing a resolved incoming edge may promote a function into the result
// set but must never lower the confidence of functions already in it.
func TestMonotonicUnderEdgeRemoval(t *testing.T) {
	cfg := config.DefaultConfig().DeadCode
	cfg.MinConfidence = 0
	a := NewAnalyzer(cfg)

	functions := []storage.FunctionInfo{
		info(1, "_a", "m.py", false),
		info(2, "_b", "m.py", false),
	}

	before := a.Analyze(functions, map[int64]int{2: 1}, nil, nil, nil)
	after := a.Analyze(functions, map[int64]int{}, nil, nil, nil)

	if len(after.Findings) < len(before.Findings) {
		t.Fatalf("edge removal shrank findings: %d -> %d", len(before.Findings), len(after.Findings))
	}

	confidence := map[string]float64{}
	for _, f := range after.Findings {
		confidence[f.Name] = f.Confidence
	}
	for _, f := range before.Findings {
		got, ok := confidence[f.Name]
		if !ok {
			t.Errorf("%s dropped from findings after edge removal", f.Name)
			continue
		}
		if got < f.Confidence {
			t.Errorf("%s confidence fell from %f to %f after edge removal", f.Name, f.Confidence, got)
		}
	}
}
