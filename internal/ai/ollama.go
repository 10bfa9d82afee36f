package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"orc/internal/config"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// ollamaClient talks to a local Ollama server. No API key is needed.
type ollamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOllamaClient(cfg config.AIConfig, httpClient *http.Client) *ollamaClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &ollamaClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      cfg.Model,
		httpClient: httpClient,
	}
}

func (c *ollamaClient) Model() string { return c.model }

type ollamaToolCall struct {
	Function struct {
		Name string `json:"name"`
		// Ollama returns arguments as a JSON object, not a string.
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []openaiTool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
}

type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

func (c *ollamaClient) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*ChatResponse, error) {
	req := ollamaRequest{Model: c.model, Stream: false}
	for _, m := range messages {
		om := ollamaMessage{Role: string(m.Role), Content: m.Content}
		for _, tc := range m.ToolCalls {
			var otc ollamaToolCall
			otc.Function.Name = tc.Name
			otc.Function.Arguments = json.RawMessage(tc.Arguments)
			om.ToolCalls = append(om.ToolCalls, otc)
		}
		req.Messages = append(req.Messages, om)
	}
	for _, t := range tools {
		ot := openaiTool{Type: "function"}
		ot.Function.Name = t.Name
		ot.Function.Description = t.Description
		ot.Function.Parameters = t.Parameters
		req.Tools = append(req.Tools, ot)
	}

	var resp ollamaResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/chat", nil, req, &resp); err != nil {
		return nil, err
	}

	out := &ChatResponse{
		Message: Message{
			Role:    RoleAssistant,
			Content: resp.Message.Content,
		},
		Usage: TokenUsage{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
		},
		StopReason: resp.DoneReason,
	}
	for i, tc := range resp.Message.ToolCalls {
		out.Message.ToolCalls = append(out.Message.ToolCalls, ToolCall{
			// Ollama does not assign call IDs; synthesize stable ones so
			// tool results can still be correlated.
			ID:        fmt.Sprintf("call_%d", i+1),
			Name:      tc.Function.Name,
			Arguments: string(tc.Function.Arguments),
		})
	}
	return out, nil
}
