package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")

		a, err := buildApp()
		if err != nil {
			fmt.Printf("Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()

		turn := a.orch.HandleTurn(context.Background(), question)
		a.persistTurn(question, turn)

		for _, reply := range turn.Replies {
			if reply.Text != "" {
				fmt.Println(reply.Text)
			}
			if reply.ImagePath != "" {
				fmt.Printf("Chart saved to %s\n", reply.ImagePath)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(askCmd)
}
