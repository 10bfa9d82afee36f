// Package hotspots answers "where does this codebase concentrate risk":
// the most-called functions, the most complex ones, the largest files, and
// the most coupled files by dependency fan-in and fan-out.
package hotspots

import (
	"fmt"

	"orc/internal/storage"
)

// CalledFunction is a function ranked by resolved incoming call edges.
type CalledFunction struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	CallCount int    `json:"callCount"`
}

// ComplexFunction is a function ranked by cyclomatic complexity.
type ComplexFunction struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	StartLine  int    `json:"startLine"`
	Complexity int    `json:"complexity"`
}

// LargeFile is a file ranked by line count.
type LargeFile struct {
	Path      string `json:"path"`
	LineCount int    `json:"lineCount"`
}

// CoupledFile is a file ranked by dependency degree.
type CoupledFile struct {
	Path   string `json:"path"`
	FanIn  int    `json:"fanIn"`
	FanOut int    `json:"fanOut"`
	Degree int    `json:"degree"`
}

// Report collects the top-N of each ranking.
type Report struct {
	MostCalled   []CalledFunction  `json:"mostCalled"`
	MostComplex  []ComplexFunction `json:"mostComplex"`
	LargestFiles []LargeFile       `json:"largestFiles"`
	MostCoupled  []CoupledFile     `json:"mostCoupled"`
}

// Analyze builds the hotspot report, keeping at most limit rows per ranking.
func Analyze(db *storage.DB, limit int) (*Report, error) {
	if limit <= 0 {
		limit = 10
	}

	report := &Report{}
	var err error

	if report.MostCalled, err = mostCalled(db, limit); err != nil {
		return nil, err
	}
	if report.MostComplex, err = mostComplex(db, limit); err != nil {
		return nil, err
	}
	if report.LargestFiles, err = largestFiles(db, limit); err != nil {
		return nil, err
	}
	if report.MostCoupled, err = mostCoupled(db, limit); err != nil {
		return nil, err
	}
	return report, nil
}

func mostCalled(db *storage.DB, limit int) ([]CalledFunction, error) {
	rows, err := db.Query(`
		SELECT f.name, fi.path, f.start_line, COUNT(rc.id) AS call_count
		FROM resolved_calls rc
		JOIN functions f ON f.id = rc.callee_function_id
		JOIN files fi ON fi.id = f.file_id
		WHERE rc.outcome = 'resolved'
		GROUP BY rc.callee_function_id
		ORDER BY call_count DESC, fi.path, f.start_line
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most-called functions: %w", err)
	}
	defer rows.Close()

	var out []CalledFunction
	for rows.Next() {
		var cf CalledFunction
		if err := rows.Scan(&cf.Name, &cf.Path, &cf.StartLine, &cf.CallCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func mostComplex(db *storage.DB, limit int) ([]ComplexFunction, error) {
	rows, err := db.Query(`
		SELECT f.name, fi.path, f.start_line, f.complexity
		FROM functions f
		JOIN files fi ON fi.id = f.file_id
		ORDER BY f.complexity DESC, fi.path, f.start_line
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most-complex functions: %w", err)
	}
	defer rows.Close()

	var out []ComplexFunction
	for rows.Next() {
		var cf ComplexFunction
		if err := rows.Scan(&cf.Name, &cf.Path, &cf.StartLine, &cf.Complexity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func largestFiles(db *storage.DB, limit int) ([]LargeFile, error) {
	rows, err := db.Query(`
		SELECT path, line_count FROM files
		ORDER BY line_count DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query largest files: %w", err)
	}
	defer rows.Close()

	var out []LargeFile
	for rows.Next() {
		var lf LargeFile
		if err := rows.Scan(&lf.Path, &lf.LineCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, lf)
	}
	return out, rows.Err()
}

func mostCoupled(db *storage.DB, limit int) ([]CoupledFile, error) {
	rows, err := db.Query(`
		SELECT fi.path,
			(SELECT COUNT(*) FROM file_dependencies d WHERE d.target_file_id = fi.id) AS fan_in,
			(SELECT COUNT(*) FROM file_dependencies d WHERE d.source_file_id = fi.id) AS fan_out
		FROM files fi
		ORDER BY fan_in + fan_out DESC, fi.path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupled files: %w", err)
	}
	defer rows.Close()

	var out []CoupledFile
	for rows.Next() {
		var cf CoupledFile
		if err := rows.Scan(&cf.Path, &cf.FanIn, &cf.FanOut); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cf.Degree = cf.FanIn + cf.FanOut
		out = append(out, cf)
	}
	return out, rows.Err()
}
