package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics in the paper catalog",
	RunE:  runTopics,
}

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Show catalog analytics",
	RunE:  runPapers,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(papersCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	topics, err := sys.Topics(cmd.Context())
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		fmt.Println("No topics found. Run 'medlit ingest' first.")
		return nil
	}
	for _, t := range topics {
		fmt.Println(t)
	}
	return nil
}

func runPapers(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	analytics, err := sys.Analytics(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Total papers: %d\n", analytics.TotalPapers)
	fmt.Printf("Topics: %d\n", len(analytics.Topics))
	for _, title := range analytics.PaperTitles {
		fmt.Printf("  - %s\n", title)
	}
	return nil
}
