package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat [session-id] [question]",
	Short: "Chat with an LLM about a session's lectures",
	Long: `Answers questions using the most relevant lecture passages as context.

With a question, prints one answer and exits. Without one, starts an
interactive conversation: earlier turns are sent with each new question.
Type "exit" or press Ctrl-D to leave.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := requireService("chat", chatService); err != nil {
		return err
	}

	sessionID := args[0]
	if len(args) > 1 {
		answer, err := ask(cmd, sessionID, strings.Join(args[1:], " "), nil)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd, answer)
		}
		printAnswer(cmd, answer)
		return nil
	}

	return chatLoop(cmd, sessionID, cmd.InOrStdin())
}

// chatLoop reads questions line by line until EOF or "exit".
func chatLoop(cmd *cobra.Command, sessionID string, in io.Reader) error {
	interactive := stdinIsTerminal()
	if interactive {
		cmd.Println(styled(mutedStyle, "Ask a question about the session. Type exit to quit."))
	}

	reader := bufio.NewReader(in)
	var history []domain.ChatTurn
	for {
		if interactive {
			cmd.Print("> ")
		}
		line, err := reader.ReadString('\n')
		question := strings.TrimSpace(line)

		if question == "exit" || question == "quit" {
			return nil
		}
		if question != "" {
			answer, askErr := ask(cmd, sessionID, question, history)
			if askErr != nil {
				return askErr
			}
			printAnswer(cmd, answer)
			history = append(history,
				domain.ChatTurn{Role: domain.RoleUser, Content: question},
				domain.ChatTurn{Role: domain.RoleAssistant, Content: answer.Answer},
			)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}
	}
}

func ask(cmd *cobra.Command, sessionID, question string, history []domain.ChatTurn) (*domain.ChatAnswer, error) {
	answer, err := chatService.Ask(commandContext(cmd), sessionID, question, history)
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return nil, fmt.Errorf("%w: run 'lecturelens settings llm' to configure a provider", err)
	}
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}
	return answer, nil
}

func printAnswer(cmd *cobra.Command, answer *domain.ChatAnswer) {
	cmd.Println(boxed(answer.Answer))
	if !answer.Grounded {
		cmd.Println(styled(warnStyle, "No lecture content matched; this answer is not grounded in the course."))
		return
	}
	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println(styled(mutedStyle, "Sources:"))
	for _, s := range answer.Sources {
		cmd.Println(styled(mutedStyle, fmt.Sprintf("  %s / %s / %s (%.2f)", s.Course, s.Chapter, s.Filename, s.Score)))
	}
}
