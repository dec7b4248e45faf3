package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the chat helper from the command line",
	Long: `Ask the chat helper a question without opening the TUI.

With a question argument, prints one answer and exits. Without one, reads
questions from stdin until EOF. Turns are added to the same saved
conversation the TUI shows.`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Nop()

	svc, err := openServices(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	helper, err := newChat(ctx, svc, log)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}
	if !helper.Available() {
		return fmt.Errorf("no LLM provider configured: set OPENROUTER_KEY or CHANGEAGENT_LLM_PROVIDER")
	}

	ask := func(q string) {
		turnCtx, cancel := context.WithTimeout(ctx, llm.DefaultConfig().Timeout)
		defer cancel()
		msg, err := helper.Send(turnCtx, q)
		fmt.Println(msg.Content)
		if err != nil {
			fmt.Fprintln(os.Stderr, "request failed:", err)
		}
		fmt.Println()
	}

	if len(args) > 0 {
		ask(strings.Join(args, " "))
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		ask(q)
	}
}
