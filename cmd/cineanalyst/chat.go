package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

var chatShowContext bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println(promptStyle.Render("CineAnalyst") + " - ask about movies, 'exit' to quit")

		var history []llms.MessageContent
		scanner := bufio.NewScanner(os.Stdin)

		for {
			fmt.Print(promptStyle.Render("> "))
			if !scanner.Scan() {
				break
			}
			query := strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}
			if query == "exit" || query == "quit" {
				break
			}

			analysis, err := a.assistant.Analyze(cmd.Context(), query, history)
			if err != nil {
				fmt.Println(degradedStyle.Render("error: " + err.Error()))
				continue
			}
			history = analysis.History

			if analysis.Degraded {
				fmt.Println(degradedStyle.Render(analysis.Answer))
			} else {
				fmt.Println(answerStyle.Render(analysis.Answer))
			}
			if chatShowContext && analysis.Context != "" {
				fmt.Println(contextStyle.Render("context:\n" + analysis.Context))
			}
		}

		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatShowContext, "show-context", false, "print the retrieved context under each answer")
}
