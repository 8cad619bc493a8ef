package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PI-33/text2sql/internal/config"
	"github.com/PI-33/text2sql/internal/history"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past chat sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory()
		defer store.Close()

		sessions, err := store.ListSessions()
		if err != nil {
			fmt.Printf("Failed to list sessions: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return
		}
		for _, sess := range sessions {
			fmt.Printf("%s  %s  %s\n", sess.ID, sess.CreatedAt.Format("2006-01-02 15:04:05"), sess.Status)
		}
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the turns of one session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory()
		defer store.Close()

		turns, err := store.SessionTurns(args[0])
		if err != nil {
			fmt.Printf("Failed to load session: %v\n", err)
			os.Exit(1)
		}
		if len(turns) == 0 {
			fmt.Println("No turns recorded for this session.")
			return
		}
		for _, turn := range turns {
			fmt.Printf("[%s] %s\n", turn.Role, turn.Content)
			if turn.SQL != "" {
				fmt.Printf("      sql: %s\n", turn.SQL)
			}
			if turn.VizPath != "" {
				fmt.Printf("      chart: %s\n", turn.VizPath)
			}
		}
	},
}

func openHistory() history.Store {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.Default()
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		fmt.Printf("Failed to open history store: %v\n", err)
		os.Exit(1)
	}
	return store
}

func init() {
	RootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}
