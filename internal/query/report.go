package query

import (
	"fmt"
	"time"

	"orc/internal/complexity"
	"orc/internal/deadcode"
	"orc/internal/hotspots"
	"orc/internal/indexer"
	"orc/internal/paths"
	"orc/internal/resolver"
	"orc/internal/storage"
	"orc/internal/version"
)

// Status describes the index state for `orc status`.
type Status struct {
	Initialized bool            `json:"initialized"`
	Indexed     bool            `json:"indexed"`
	RunID       string          `json:"runId,omitempty"`
	IndexedAt   time.Time       `json:"indexedAt,omitempty"`
	Indexer     string          `json:"indexer,omitempty"`
	Languages   []string        `json:"languages"`
	Counts      *storage.Counts `json:"counts,omitempty"`
}

// GetStatus reports whether the repo is initialized and indexed, and with
// what.
func (e *Engine) GetStatus(repoRoot string) (*Status, error) {
	status := &Status{
		Initialized: true,
		Languages:   e.cfg.Languages,
	}

	meta, err := indexer.LoadMeta(paths.Join(repoRoot, ".orc"))
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return status, nil
	}

	status.Indexed = true
	status.RunID = meta.RunID
	status.IndexedAt = meta.CreatedAt
	status.Indexer = meta.Indexer

	counts, err := e.Counts()
	if err != nil {
		return nil, err
	}
	status.Counts = counts
	return status, nil
}

// Report is the full analysis view for `orc report` and `orc scan`.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Tool        string             `json:"tool"`
	Counts      *storage.Counts    `json:"counts"`
	Complexity  *complexity.Report `json:"complexity"`
	DeadCode    *deadcode.Result   `json:"deadCode"`
	Cycles      []resolver.Cycle   `json:"cycles"`
	Hotspots    *hotspots.Report   `json:"hotspots"`
}

// BuildReport assembles all analyses into one report.
func (e *Engine) BuildReport() (*Report, error) {
	counts, err := e.Counts()
	if err != nil {
		return nil, err
	}
	cplx, err := e.FindComplex()
	if err != nil {
		return nil, err
	}
	dead, err := e.FindDead()
	if err != nil {
		return nil, err
	}
	cycles, err := e.Cycles()
	if err != nil {
		return nil, err
	}
	spots, err := e.Hotspots(10)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Tool:        "orc " + version.Version,
		Counts:      counts,
		Complexity:  cplx,
		DeadCode:    dead,
		Cycles:      cycles,
		Hotspots:    spots,
	}, nil
}

// CheckIssue is one health-gate violation.
type CheckIssue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CheckResult is the pass/fail verdict for `orc check`.
type CheckResult struct {
	Passed bool         `json:"passed"`
	Issues []CheckIssue `json:"issues"`
}

// Check runs the health gate: circular dependencies and critical-complexity
// functions fail it; high-confidence dead code is reported as a warning.
func (e *Engine) Check() (*CheckResult, error) {
	result := &CheckResult{Passed: true}

	cycles, err := e.Cycles()
	if err != nil {
		return nil, err
	}
	for _, cycle := range cycles {
		result.Passed = false
		result.Issues = append(result.Issues, CheckIssue{
			Severity: "error",
			Message:  fmt.Sprintf("circular dependency: %s", joinCycle(cycle)),
		})
	}

	cplx, err := e.FindComplex()
	if err != nil {
		return nil, err
	}
	for _, finding := range cplx.Findings {
		if finding.Severity != complexity.SeverityCritical {
			continue
		}
		result.Passed = false
		result.Issues = append(result.Issues, CheckIssue{
			Severity: "error",
			Message:  fmt.Sprintf("critical complexity %d in %s (%s:%d)", finding.Score, finding.Name, finding.Path, finding.StartLine),
		})
	}

	dead, err := e.FindDead()
	if err != nil {
		return nil, err
	}
	for _, finding := range dead.Findings {
		result.Issues = append(result.Issues, CheckIssue{
			Severity: "warning",
			Message:  fmt.Sprintf("probable dead code: %s (%s:%d, confidence %.2f)", finding.Name, finding.Path, finding.StartLine, finding.Confidence),
		})
	}

	return result, nil
}

func joinCycle(cycle resolver.Cycle) string {
	out := ""
	for i, path := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += path
	}
	if len(cycle) > 0 {
		out += " -> " + cycle[0]
	}
	return out
}
