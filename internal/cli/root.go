package cli

import (
	"os"

	"medlit/internal/config"
	"medlit/internal/generator"
	"medlit/internal/jats"
	"medlit/internal/llm"
	"medlit/internal/rag"
	"medlit/internal/session"
	"medlit/internal/tools"
	"medlit/internal/vectorstore"
	"medlit/internal/vectorstore/chroma"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "medlit",
	Short: "Medical literature assistant - ingest research papers and ask evidence-grounded questions",
	Long: `medlit ingests JATS XML research papers into a searchable evidence store
and answers questions against them with cited sources.

Example usage:
  medlit ingest ./papers          # Ingest every paper in a folder
  medlit ask "Do statins reduce cardiovascular risk?"
  medlit topics                   # List topics in the catalog`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(".env")
		cfg = config.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newSystem assembles the pipeline the same way the API server does, minus
// Postgres and Temporal: the CLI runs everything in-process.
func newSystem() (*rag.System, error) {
	store := vectorstore.New(chroma.New(cfg.ChromaURL), cfg.MaxResults, cfg.CatalogCollection, cfg.ContentCollection)
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewLiteratureSearch(store)); err != nil {
		return nil, err
	}
	gen := generator.New(llm.NewAnthropicClient(cfg.AnthropicAPIKey), cfg.AnthropicModel, registry)
	processor := jats.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap, jats.NewTopicCache(cfg.MetadataDir))
	return rag.NewSystem(processor, store, gen, session.NewMemory(cfg.MaxHistory)), nil
}
