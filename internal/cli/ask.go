package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the ingested literature",
	Long: `Ask a medical research question. The assistant searches the ingested
papers when the question calls for evidence and cites its sources.

Examples:
  medlit ask "Do statins reduce cardiovascular risk?"
  medlit ask --session s1 "What about side effects?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askSessionID, "session", "", "session id for conversation context (default: new session)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	sessionID := askSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	answer, err := sys.Query(cmd.Context(), args[0], sessionID)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	fmt.Println(answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			if src.URL != "" {
				fmt.Printf("  - %s (%s)\n", src.Text, src.URL)
			} else {
				fmt.Printf("  - %s\n", src.Text)
			}
		}
	}
	return nil
}
