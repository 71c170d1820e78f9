package main

import (
	"log"

	"medlit/internal/activities"
	"medlit/internal/config"
	"medlit/internal/jats"
	"medlit/internal/vectorstore"
	"medlit/internal/vectorstore/chroma"
	"medlit/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)

	store := vectorstore.New(chroma.New(cfg.ChromaURL), cfg.MaxResults, cfg.CatalogCollection, cfg.ContentCollection)
	processor := jats.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap, jats.NewTopicCache(cfg.MetadataDir))
	activities.Register(w, activities.New(cfg, processor, store))

	log.Printf("medlit worker listening on %s queue=%s papers=%s", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.PapersDir)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
