package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"orc/internal/ai"
	"orc/internal/chat"
	"orc/internal/config"
)

var chatAsk string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the indexed codebase",
	Long: `Starts an interactive session with the configured LLM provider. The
model answers using analysis tools over the index (counts, dead code,
complexity, cycles, hotspots, file search).

Provider, model, and API key env var come from the ai section of
.orc/config.yaml. Provider failures are reported inline; the session
keeps running.

Examples:
  orc chat                                 # Interactive session
  orc chat --ask "what looks dead?"        # One question, then exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatAsk, "ask", "", "Ask a single question and exit")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	logger := newLogger()
	engine := mustGetEngine(repoRoot, logger)

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return err
	}

	client, err := ai.New(cfg.AI)
	if err != nil {
		return err
	}

	session, err := chat.NewSession(client, engine, logger)
	if err != nil {
		return err
	}

	ctx := newContext()

	if chatAsk != "" {
		answer, err := session.Ask(ctx, chatAsk)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	fmt.Printf("orc chat (%s). Type your question, or 'exit' to quit.\n", client.Model())
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := session.Ask(ctx, question)
		if err != nil {
			// Provider failures degrade to an inline message.
			if errors.Is(err, ai.ErrProviderFailure) {
				fmt.Printf("[provider error] %v\n", err)
				continue
			}
			return err
		}
		fmt.Println(answer)
	}

	usage := session.Usage()
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		fmt.Printf("Session tokens: %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
	}
	return scanner.Err()
}
