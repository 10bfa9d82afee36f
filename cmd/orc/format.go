package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"orc/internal/complexity"
	"orc/internal/deadcode"
	"orc/internal/hotspots"
	"orc/internal/indexer"
	"orc/internal/query"
	"orc/internal/resolver"
	"orc/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// currentFormat resolves the --format flag value.
func currentFormat() OutputFormat {
	if formatFlag == "json" {
		return FormatJSON
	}
	return FormatHuman
}

// FormatResponse formats a response according to the specified format.
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// printResponse renders resp to stdout in the selected format.
func printResponse(resp interface{}) error {
	out, err := FormatResponse(resp, currentFormat())
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *indexer.Stats:
		return formatStatsHuman(v), nil
	case *query.Status:
		return formatStatusHuman(v), nil
	case *query.Report:
		return formatReportHuman(v), nil
	case *query.CheckResult:
		return formatCheckHuman(v), nil
	case *query.LargeResult:
		return formatLargeHuman(v), nil
	case *complexity.Report:
		return formatComplexityHuman(v), nil
	case *deadcode.Result:
		return formatDeadHuman(v), nil
	case []resolver.Cycle:
		return formatCyclesHuman(v), nil
	case *hotspots.Report:
		return formatHotspotsHuman(v), nil
	case []storage.File:
		return formatFilesHuman(v), nil
	default:
		// Unknown types fall back to JSON.
		return formatJSON(resp)
	}
}

func formatStatsHuman(stats *indexer.Stats) string {
	if stats.UpToDate {
		return fmt.Sprintf("Index up to date (run %s).", stats.RunID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Indexed %d files in %s\n", stats.Files, stats.DurationText)
	fmt.Fprintf(&b, "  functions:    %d\n", stats.Functions)
	fmt.Fprintf(&b, "  classes:      %d\n", stats.Classes)
	fmt.Fprintf(&b, "  imports:      %d\n", stats.Imports)
	fmt.Fprintf(&b, "  dependencies: %d\n", stats.Dependencies)
	fmt.Fprintf(&b, "  calls:        %d\n", stats.Calls)
	fmt.Fprintf(&b, "  entry points: %d\n", stats.EntryPoints)
	if stats.ParseFailures > 0 {
		fmt.Fprintf(&b, "  parse failures: %d (see warnings above)\n", stats.ParseFailures)
	}
	fmt.Fprintf(&b, "Run ID: %s", stats.RunID)
	return b.String()
}

func formatStatusHuman(status *query.Status) string {
	var b strings.Builder
	if !status.Indexed {
		b.WriteString("Initialized but not indexed. Run 'orc index'.")
		return b.String()
	}
	fmt.Fprintf(&b, "Indexed at %s by %s\n", status.IndexedAt.Format("2006-01-02 15:04:05"), status.Indexer)
	fmt.Fprintf(&b, "Run ID: %s\n", status.RunID)
	fmt.Fprintf(&b, "Languages: %s\n", strings.Join(status.Languages, ", "))
	if status.Counts != nil {
		fmt.Fprintf(&b, "Files: %d, Functions: %d, Classes: %d, Imports: %d",
			status.Counts.Files, status.Counts.Functions, status.Counts.Classes, status.Counts.Imports)
	}
	return b.String()
}

func formatComplexityHuman(report *complexity.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Complexity: %d medium, %d high, %d critical (avg %.1f, max %d)\n",
		report.MediumCount, report.HighCount, report.CriticalCount, report.Average, report.Max)
	if len(report.Findings) == 0 {
		b.WriteString("No functions over the configured thresholds.")
		return b.String()
	}
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "  [%s] %s (%s:%d) score %d, %d lines\n",
			f.Severity, f.Name, f.Path, f.StartLine, f.Score, f.Lines)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLargeHuman(result *query.LargeResult) string {
	var b strings.Builder
	if len(result.Functions) == 0 && len(result.Files) == 0 {
		return "Nothing over the configured size limits."
	}
	if len(result.Functions) > 0 {
		b.WriteString("Large functions:\n")
		for _, f := range result.Functions {
			fmt.Fprintf(&b, "  %s (%s:%d) %d lines\n", f.Name, f.FilePath, f.StartLine, f.Lines())
		}
	}
	if len(result.Files) > 0 {
		b.WriteString("Large files:\n")
		for _, f := range result.Files {
			fmt.Fprintf(&b, "  %s: %d lines\n", f.Path, f.LineCount)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDeadHuman(result *deadcode.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dead code candidates: %d (analyzed %d, excluded %d, below threshold %d)\n",
		len(result.Findings), result.Analyzed, result.Excluded, result.BelowMinScore)
	for _, f := range result.Findings {
		fmt.Fprintf(&b, "  %s (%s:%d) confidence %.2f", f.Name, f.Path, f.StartLine, f.Confidence)
		if len(f.Reasons) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(f.Reasons, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCyclesHuman(cycles []resolver.Cycle) string {
	if len(cycles) == 0 {
		return "No circular dependencies."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Circular dependencies: %d\n", len(cycles))
	for _, cycle := range cycles {
		fmt.Fprintf(&b, "  %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHotspotsHuman(report *hotspots.Report) string {
	var b strings.Builder
	if len(report.MostCalled) > 0 {
		b.WriteString("Most called:\n")
		for _, f := range report.MostCalled {
			fmt.Fprintf(&b, "  %s (%s:%d) %d calls\n", f.Name, f.Path, f.StartLine, f.CallCount)
		}
	}
	if len(report.MostComplex) > 0 {
		b.WriteString("Most complex:\n")
		for _, f := range report.MostComplex {
			fmt.Fprintf(&b, "  %s (%s:%d) complexity %d\n", f.Name, f.Path, f.StartLine, f.Complexity)
		}
	}
	if len(report.LargestFiles) > 0 {
		b.WriteString("Largest files:\n")
		for _, f := range report.LargestFiles {
			fmt.Fprintf(&b, "  %s: %d lines\n", f.Path, f.LineCount)
		}
	}
	if len(report.MostCoupled) > 0 {
		b.WriteString("Most coupled files:\n")
		for _, f := range report.MostCoupled {
			fmt.Fprintf(&b, "  %s: fan-in %d, fan-out %d\n", f.Path, f.FanIn, f.FanOut)
		}
	}
	if b.Len() == 0 {
		return "No hotspots found."
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFilesHuman(files []storage.File) string {
	if len(files) == 0 {
		return "No matching files."
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s (%s, %d lines)\n", f.Path, f.Language, f.LineCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatReportHuman(report *query.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s report, generated %s\n", report.Tool, report.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	if report.Counts != nil {
		fmt.Fprintf(&b, "Files: %d  Functions: %d  Classes: %d  Imports: %d\n\n",
			report.Counts.Files, report.Counts.Functions, report.Counts.Classes, report.Counts.Imports)
	}
	b.WriteString(formatComplexityHuman(report.Complexity) + "\n\n")
	b.WriteString(formatDeadHuman(report.DeadCode) + "\n\n")
	b.WriteString(formatCyclesHuman(report.Cycles) + "\n\n")
	b.WriteString(formatHotspotsHuman(report.Hotspots))
	return b.String()
}

func formatCheckHuman(result *query.CheckResult) string {
	var b strings.Builder
	for _, issue := range result.Issues {
		fmt.Fprintf(&b, "[%s] %s\n", issue.Severity, issue.Message)
	}
	if result.Passed {
		b.WriteString("Check passed.")
	} else {
		b.WriteString("Check failed.")
	}
	return b.String()
}
