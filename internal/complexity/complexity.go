// Package complexity buckets stored cyclomatic scores into severities and
// aggregates them per file and per project. The scores themselves are
// computed at parse time; this package only interprets them against the
// configured thresholds.
package complexity

import (
	"sort"

	"orc/internal/config"
	"orc/internal/storage"
)

// Severity labels one function's complexity against the thresholds.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is one function at or above the medium threshold.
type Finding struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Lines     int      `json:"lines"`
	Score     int      `json:"score"`
	Severity  Severity `json:"severity"`
}

// FileSummary aggregates complexity over one file.
type FileSummary struct {
	Path          string  `json:"path"`
	FunctionCount int     `json:"functionCount"`
	Total         int     `json:"total"`
	Max           int     `json:"max"`
	Average       float64 `json:"average"`
}

// Report is the project-wide complexity picture.
type Report struct {
	Findings      []Finding `json:"findings"`
	MediumCount   int       `json:"mediumCount"`
	HighCount     int       `json:"highCount"`
	CriticalCount int       `json:"criticalCount"`
	Average       float64   `json:"average"`
	Max           int       `json:"max"`
}

// Analyzer classifies stored complexity scores.
type Analyzer struct {
	thresholds config.ThresholdsConfig
}

// NewAnalyzer returns an analyzer using the configured thresholds.
func NewAnalyzer(thresholds config.ThresholdsConfig) *Analyzer {
	return &Analyzer{thresholds: thresholds}
}

// Classify returns the severity bucket for a cyclomatic score.
func (a *Analyzer) Classify(score int) Severity {
	switch {
	case score >= a.thresholds.ComplexityCritical:
		return SeverityCritical
	case score >= a.thresholds.ComplexityHigh:
		return SeverityHigh
	case score >= a.thresholds.ComplexityMedium:
		return SeverityMedium
	default:
		return SeverityOK
	}
}

// Analyze produces the project report over all stored functions. Findings
// cover everything at or above the medium threshold, most complex first;
// the averages cover every function.
func (a *Analyzer) Analyze(functions []storage.FunctionInfo) *Report {
	report := &Report{}
	total := 0

	for _, fn := range functions {
		total += fn.Complexity
		if fn.Complexity > report.Max {
			report.Max = fn.Complexity
		}

		severity := a.Classify(fn.Complexity)
		switch severity {
		case SeverityOK:
			continue
		case SeverityMedium:
			report.MediumCount++
		case SeverityHigh:
			report.HighCount++
		case SeverityCritical:
			report.CriticalCount++
		}

		report.Findings = append(report.Findings, Finding{
			Name:      fn.Name,
			Path:      fn.FilePath,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Lines:     fn.Lines(),
			Score:     fn.Complexity,
			Severity:  severity,
		})
	}

	if len(functions) > 0 {
		report.Average = float64(total) / float64(len(functions))
	}

	sortFindings(report.Findings)
	return report
}

// SummarizeFiles aggregates scores per file path.
func SummarizeFiles(functions []storage.FunctionInfo) []FileSummary {
	order := []string{}
	byPath := map[string]*FileSummary{}

	for _, fn := range functions {
		summary, ok := byPath[fn.FilePath]
		if !ok {
			summary = &FileSummary{Path: fn.FilePath}
			byPath[fn.FilePath] = summary
			order = append(order, fn.FilePath)
		}
		summary.FunctionCount++
		summary.Total += fn.Complexity
		if fn.Complexity > summary.Max {
			summary.Max = fn.Complexity
		}
	}

	summaries := make([]FileSummary, 0, len(order))
	for _, path := range order {
		s := byPath[path]
		s.Average = float64(s.Total) / float64(s.FunctionCount)
		summaries = append(summaries, *s)
	}
	return summaries
}

// sortFindings orders highest score first; path then line break ties so
// output is stable across runs.
func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.StartLine < b.StartLine
	})
}
