package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"medlit/internal/api"
	"medlit/internal/config"
	"medlit/internal/generator"
	"medlit/internal/jats"
	"medlit/internal/llm"
	"medlit/internal/rag"
	"medlit/internal/session"
	"medlit/internal/storage"
	"medlit/internal/tools"
	"medlit/internal/vectorstore"
	"medlit/internal/vectorstore/chroma"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	store := vectorstore.New(chroma.New(cfg.ChromaURL), cfg.MaxResults, cfg.CatalogCollection, cfg.ContentCollection)
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewLiteratureSearch(store)); err != nil {
		log.Fatal(err)
	}
	gen := generator.New(llm.NewAnthropicClient(cfg.AnthropicAPIKey), cfg.AnthropicModel, registry)
	processor := jats.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap, jats.NewTopicCache(cfg.MetadataDir))

	var sessions session.Store = session.NewMemory(cfg.MaxHistory)
	var audit *storage.QueryAuditRepo
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		cancel()
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		sessions = storage.NewSessionRepo(db, cfg.MaxHistory)
		audit = storage.NewQueryAuditRepo(db)
	}

	var temporal tclient.Client
	if tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress}); err != nil {
		log.Printf("temporal unavailable, ingest endpoints disabled: %v", err)
	} else {
		temporal = tc
		defer tc.Close()
	}

	system := rag.NewSystem(processor, store, gen, sessions)
	h := api.NewServer(cfg, system, temporal, audit)
	log.Printf("medlit api listening on %s model=%s chroma=%s", cfg.APIAddr, cfg.AnthropicModel, cfg.ChromaURL)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
