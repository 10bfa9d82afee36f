package resolver

import (
	"sort"
	"strings"

	"orc/internal/storage"
)

// Cycle is one circular dependency, listed as file paths in import order.
type Cycle []string

// Cycles finds circular dependencies in the file graph. Each cycle is
// reported exactly once regardless of where the traversal entered it: the
// path list is rotated so the lexicographically smallest path comes first,
// and duplicates are collapsed on that canonical form.
func Cycles(files []storage.File, deps []storage.FileDependency) []Cycle {
	pathOf := make(map[int64]string, len(files))
	for _, f := range files {
		pathOf[f.ID] = f.Path
	}

	adjacency := make(map[int64][]int64)
	for _, dep := range deps {
		adjacency[dep.SourceFileID] = append(adjacency[dep.SourceFileID], dep.TargetFileID)
	}
	for id := range adjacency {
		neighbors := adjacency[id]
		sort.Slice(neighbors, func(i, j int) bool { return pathOf[neighbors[i]] < pathOf[neighbors[j]] })
	}

	// Deterministic traversal order.
	ids := make([]int64, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return pathOf[ids[i]] < pathOf[ids[j]] })

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int64]int)
	var stack []int64
	seen := make(map[string]bool)
	var cycles []Cycle

	var visit func(id int64)
	visit = func(id int64) {
		color[id] = gray
		stack = append(stack, id)

		for _, next := range adjacency[id] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				// Back edge: the cycle runs from next to the stack top.
				start := len(stack) - 1
				for start >= 0 && stack[start] != next {
					start--
				}
				if start < 0 {
					continue
				}
				cycle := make(Cycle, 0, len(stack)-start)
				for _, member := range stack[start:] {
					cycle = append(cycle, pathOf[member])
				}
				cycle = canonicalRotation(cycle)
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range ids {
		if color[id] == white {
			visit(id)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	return cycles
}

// canonicalRotation rotates a cycle so its smallest path leads.
func canonicalRotation(cycle Cycle) Cycle {
	min := 0
	for i := 1; i < len(cycle); i++ {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	rotated := make(Cycle, 0, len(cycle))
	rotated = append(rotated, cycle[min:]...)
	rotated = append(rotated, cycle[:min]...)
	return rotated
}
