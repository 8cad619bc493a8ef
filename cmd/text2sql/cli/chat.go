package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PI-33/text2sql/internal/pipeline"
	"github.com/PI-33/text2sql/internal/ui/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp()
		if err != nil {
			fmt.Printf("Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()

		ask := func(ctx context.Context, question string) *pipeline.Turn {
			turn := a.orch.HandleTurn(ctx, question)
			a.persistTurn(question, turn)
			return turn
		}

		model := tui.NewModel("text2sql chat", ask)
		program := tea.NewProgram(model)
		if _, err := program.Run(); err != nil {
			fmt.Printf("Alas, there's been an error: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(chatCmd)
}
