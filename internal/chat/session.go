package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"orc/internal/ai"
	"orc/internal/logging"
	"orc/internal/query"
)

// maxToolRounds bounds how many tool-call rounds one question may trigger.
const maxToolRounds = 8

// Session is one conversation with the model, holding the full message
// history so follow-up questions keep context.
type Session struct {
	ID       string
	client   ai.Client
	registry *Registry
	logger   *logging.Logger
	messages []ai.Message
	usage    ai.TokenUsage
}

// NewSession builds a session whose system prompt summarizes the current
// index, so the model knows what it is looking at before the first question.
func NewSession(client ai.Client, engine *query.Engine, logger *logging.Logger) (*Session, error) {
	prompt, err := systemPrompt(engine)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:       uuid.NewString(),
		client:   client,
		registry: NewRegistry(engine),
		logger:   logger,
		messages: []ai.Message{{Role: ai.RoleSystem, Content: prompt}},
	}, nil
}

func systemPrompt(engine *query.Engine) (string, error) {
	counts, err := engine.Counts()
	if err != nil {
		return "", fmt.Errorf("summarizing index: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a code-analysis assistant answering questions about an indexed repository.\n")
	b.WriteString("The index currently holds ")
	fmt.Fprintf(&b, "%d files, %d functions, %d classes, %d imports, %d file dependencies, and %d entry points.\n",
		counts.Files, counts.Functions, counts.Classes, counts.Imports, counts.Dependencies, counts.EntryPoints)
	b.WriteString("Use the provided tools to look up facts before answering; do not guess about code you have not queried.\n")
	b.WriteString("Dead-code findings are heuristics, not proof: report their confidence scores and say so.\n")
	b.WriteString("Answer concisely. Cite file paths and line numbers from tool results where relevant.")
	return b.String(), nil
}

// Usage returns the accumulated token usage across all turns.
func (s *Session) Usage() ai.TokenUsage {
	return s.usage
}

// Ask sends a question, resolves any tool calls the model makes, and
// returns the model's final text answer. Provider failures come back as
// errors so the caller can report them inline and keep the session alive.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.messages = append(s.messages, ai.Message{Role: ai.RoleUser, Content: question})

	for round := 0; round <= maxToolRounds; round++ {
		resp, err := s.client.Chat(ctx, s.messages, s.registry.Specs())
		if err != nil {
			// Drop the failed turn so a retry question starts clean.
			s.messages = s.messages[:len(s.messages)-1]
			if errors.Is(err, ai.ErrProviderFailure) {
				return "", err
			}
			return "", fmt.Errorf("%w: %v", ai.ErrProviderFailure, err)
		}
		s.usage.Add(resp.Usage)
		s.messages = append(s.messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		for _, call := range resp.Message.ToolCalls {
			s.logger.Debug("executing tool", map[string]interface{}{
				"tool": call.Name,
				"id":   call.ID,
			})
			s.messages = append(s.messages, ai.Message{
				Role:       ai.RoleTool,
				Content:    s.registry.Execute(call),
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	return "", fmt.Errorf("model did not produce an answer within %d tool rounds", maxToolRounds)
}
