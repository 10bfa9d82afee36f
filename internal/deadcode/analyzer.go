// Package deadcode flags functions with no resolved incoming call edges.
// Everything here is a heuristic over static edges, so each finding carries
// a confidence score rather than a verdict: signals that a function might be
// reached dynamically (public API surface, decorators, ambiguous call names
// elsewhere) multiply the confidence down, and the configured floor decides
// what gets reported. Removing call edges can only ever add findings, never
// shrink the confidence of existing ones.
package deadcode

import (
	"sort"

	"orc/internal/config"
	"orc/internal/storage"
)

// Confidence weights. The base applies to every candidate; the rest
// multiply it down per dynamic-reachability signal.
const (
	baseConfidence      = 0.99
	exportedWeight      = 0.60
	decoratedWeight     = 0.65
	ambiguousNameWeight = 0.70
	mainGuardFileWeight = 0.85
)

// Finding is one function reported as probably dead.
type Finding struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Result is the full dead-code report.
type Result struct {
	Findings      []Finding `json:"findings"`
	Analyzed      int       `json:"analyzed"`
	Excluded      int       `json:"excluded"`
	BelowMinScore int       `json:"belowMinScore"`
}

// Analyzer detects unreferenced functions from stored call edges.
type Analyzer struct {
	cfg        config.DeadCodeConfig
	exclusions *ExclusionRules
}

// NewAnalyzer creates an analyzer from the dead-code configuration.
func NewAnalyzer(cfg config.DeadCodeConfig) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		exclusions: NewExclusionRules(cfg.DynamicAllowlist, cfg.ExcludePatterns),
	}
}

// Analyze scores every function with zero resolved incoming edges.
// entryFunctionIDs holds functions reachable from a detected entry point;
// unresolvedNames counts unresolved call edges per callee name.
func (a *Analyzer) Analyze(
	functions []storage.FunctionInfo,
	incoming map[int64]int,
	unresolvedNames map[string]int,
	entryFunctionIDs map[int64]bool,
	mainGuardFiles map[int64]bool,
) *Result {
	result := &Result{Analyzed: len(functions)}

	for _, fn := range functions {
		if incoming[fn.ID] > 0 {
			continue
		}
		if entryFunctionIDs[fn.ID] {
			result.Excluded++
			continue
		}
		if reason := a.exclusions.ShouldExclude(fn.Name, fn.FilePath); reason != "" {
			result.Excluded++
			continue
		}

		finding := Finding{
			Name:       fn.Name,
			Path:       fn.FilePath,
			StartLine:  fn.StartLine,
			EndLine:    fn.EndLine,
			Confidence: baseConfidence,
		}

		if fn.Exported {
			finding.Confidence *= exportedWeight
			finding.Reasons = append(finding.Reasons, "public name may be imported elsewhere")
		}
		if len(fn.Decorators) > 0 {
			finding.Confidence *= decoratedWeight
			finding.Reasons = append(finding.Reasons, "decorators can register the function dynamically")
		}
		if unresolvedNames[lastNameSegment(fn.Name)] > 0 {
			finding.Confidence *= ambiguousNameWeight
			finding.Reasons = append(finding.Reasons, "unresolved calls elsewhere share this name")
		}
		if mainGuardFiles[fn.FileID] {
			finding.Confidence *= mainGuardFileWeight
			finding.Reasons = append(finding.Reasons, "file has a main guard with top-level calls")
		}

		if finding.Confidence < a.cfg.MinConfidence {
			result.BelowMinScore++
			continue
		}
		result.Findings = append(result.Findings, finding)
	}

	sort.Slice(result.Findings, func(i, j int) bool {
		a, b := result.Findings[i], result.Findings[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.StartLine < b.StartLine
	})
	return result
}
