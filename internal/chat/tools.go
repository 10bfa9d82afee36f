// Package chat runs the assistant session: it builds a system prompt from
// the index, offers analysis tools to the model, and loops over tool-call
// rounds until the model produces a final answer.
package chat

import (
	"encoding/json"
	"fmt"

	"orc/internal/ai"
	"orc/internal/query"
)

// Tool is one analysis operation the model can invoke.
type Tool struct {
	Spec ai.ToolSpec
	Run  func(args json.RawMessage) (interface{}, error)
}

// Registry maps tool names to their implementations.
type Registry struct {
	tools map[string]Tool
	order []string
}

func (r *Registry) add(t Tool) {
	r.tools[t.Spec.Name] = t
	r.order = append(r.order, t.Spec.Name)
}

// Specs returns the tool specs in registration order.
func (r *Registry) Specs() []ai.ToolSpec {
	specs := make([]ai.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec)
	}
	return specs
}

// Execute runs a named tool and renders its result as JSON. Failures are
// rendered as a JSON error object so the model can react instead of the
// session aborting.
func (r *Registry) Execute(call ai.ToolCall) string {
	tool, ok := r.tools[call.Name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool %q", call.Name))
	}
	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	result, err := tool.Run(args)
	if err != nil {
		return errorPayload(err.Error())
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorPayload("encoding result: " + err.Error())
	}
	return string(data)
}

func errorPayload(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}

const emptySchema = `{"type":"object","properties":{}}`

// NewRegistry exposes the query engine's analyses as model tools.
func NewRegistry(engine *query.Engine) *Registry {
	r := &Registry{tools: make(map[string]Tool)}

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "get_counts",
			Description: "Get the number of indexed files, functions, classes, imports, dependency edges, resolved calls, and entry points.",
			Parameters:  json.RawMessage(emptySchema),
		},
		Run: func(json.RawMessage) (interface{}, error) {
			return engine.Counts()
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "find_complex_functions",
			Description: "List functions whose cyclomatic complexity is at or above the configured thresholds, with severity classification.",
			Parameters:  json.RawMessage(emptySchema),
		},
		Run: func(json.RawMessage) (interface{}, error) {
			return engine.FindComplex()
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "find_large_code",
			Description: "List functions and files whose line counts exceed the configured limits.",
			Parameters:  json.RawMessage(emptySchema),
		},
		Run: func(json.RawMessage) (interface{}, error) {
			return engine.FindLarge()
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "find_dead_code",
			Description: "List functions with no resolved incoming calls, scored by confidence that they are unused.",
			Parameters:  json.RawMessage(emptySchema),
		},
		Run: func(json.RawMessage) (interface{}, error) {
			return engine.FindDead()
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "find_cycles",
			Description: "List circular import chains between files.",
			Parameters:  json.RawMessage(emptySchema),
		},
		Run: func(json.RawMessage) (interface{}, error) {
			return engine.Cycles()
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "get_hotspots",
			Description: "Get the most-called functions, most complex functions, largest files, and most coupled files.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Maximum entries per category (default 10)."}
				}
			}`),
		},
		Run: func(args json.RawMessage) (interface{}, error) {
			var params struct {
				Limit int `json:"limit"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			return engine.Hotspots(params.Limit)
		},
	})

	r.add(Tool{
		Spec: ai.ToolSpec{
			Name:        "find_files",
			Description: "List indexed files whose path matches a glob pattern, e.g. 'src/**/*.py'.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"pattern": {"type": "string", "description": "Glob pattern matched against repo-relative paths."}
				},
				"required": ["pattern"]
			}`),
		},
		Run: func(args json.RawMessage) (interface{}, error) {
			var params struct {
				Pattern string `json:"pattern"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			if params.Pattern == "" {
				return nil, fmt.Errorf("pattern is required")
			}
			return engine.FindPattern(params.Pattern)
		},
	})

	return r
}
