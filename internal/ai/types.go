// Package ai talks to LLM providers for the chat layer. Providers share
// one Client interface; OpenAI-compatible, Anthropic, and Ollama codecs are
// built in. Transient failures (throttling, 5xx, network) are retried with
// exponential backoff; anything surviving the retries wraps
// ErrProviderFailure so callers can degrade gracefully.
package ai

import "encoding/json"

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages requesting tool execution.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string `json:"toolCallId,omitempty"`

	// Name is the tool name on RoleTool messages.
	Name string `json:"name,omitempty"`
}

// ToolCall is a provider request to execute a named tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON object text
}

// ToolSpec describes a tool offered to the provider.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON schema
}

// TokenUsage counts tokens for one exchange.
type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Add accumulates usage across exchanges.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ChatResponse is one completed provider exchange.
type ChatResponse struct {
	Message    Message    `json:"message"`
	Usage      TokenUsage `json:"usage"`
	StopReason string     `json:"stopReason,omitempty"`
}
