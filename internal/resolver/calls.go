package resolver

import (
	"strings"

	"orc/internal/storage"
)

// ResolveCalls matches raw call names against the indexed functions. The
// lookup key is the segment after the last dot of the name as written, so
// "self.validate" and "svc.validate" both look up "validate". Exactly one
// candidate resolves the edge; none marks it external (builtins, library
// calls); several leave it unresolved rather than picking one.
func ResolveCalls(functions []storage.Function) []storage.ResolvedCall {
	index := make(map[string][]*storage.Function)
	for i := range functions {
		fn := &functions[i]
		index[lastSegment(fn.Name)] = append(index[lastSegment(fn.Name)], fn)
	}

	var calls []storage.ResolvedCall
	nextID := int64(1)

	for i := range functions {
		caller := &functions[i]
		for _, raw := range caller.Calls {
			call := storage.ResolvedCall{
				ID:               nextID,
				CallerFunctionID: caller.ID,
				CalleeName:       raw,
			}
			nextID++

			candidates := index[lastSegment(raw)]
			switch len(candidates) {
			case 0:
				call.Outcome = storage.OutcomeExternal
			case 1:
				call.Outcome = storage.OutcomeResolved
				call.CalleeFunctionID = candidates[0].ID
			default:
				call.Outcome = storage.OutcomeUnresolved
			}
			calls = append(calls, call)
		}
	}

	return calls
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
