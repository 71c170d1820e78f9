package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Ingest JATS XML papers from a folder",
	Long: `Process every .xml paper in a folder into the evidence store.
Abstract-only papers and already-ingested titles are skipped.

Examples:
  medlit ingest ./papers
  medlit ingest ./papers --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear existing data before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	folder := cfg.PapersDir
	if len(args) > 0 {
		folder = args[0]
	}
	sys, err := newSystem()
	if err != nil {
		return err
	}
	summary, err := sys.AddPapersFromFolder(cmd.Context(), folder, ingestClear)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	fmt.Printf("Added %d papers (%d chunks); skipped %d, failed %d\n",
		summary.PapersAdded, summary.ChunksAdded, summary.Skipped, summary.Failed)
	return nil
}
