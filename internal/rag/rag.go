package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"medlit/internal/generator"
	"medlit/internal/jats"
	"medlit/internal/models"
	"medlit/internal/session"
	"medlit/internal/util"
	"medlit/internal/vectorstore"
)

// System wires the ingestion and query pipelines together: JATS processing
// into the evidence store on one side, tool-assisted answering with session
// context on the other.
type System struct {
	processor *jats.Processor
	store     *vectorstore.Store
	generator *generator.Generator
	sessions  session.Store
}

func NewSystem(processor *jats.Processor, store *vectorstore.Store, gen *generator.Generator, sessions session.Store) *System {
	return &System{
		processor: processor,
		store:     store,
		generator: gen,
		sessions:  sessions,
	}
}

// Answer is a query response with its backing citations.
type Answer struct {
	Response string
	Sources  []models.Source
}

// IngestSummary tallies one batch ingestion run.
type IngestSummary struct {
	PapersAdded int `json:"papers_added"`
	ChunksAdded int `json:"chunks_added"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// AddPaper processes one paper file and writes it to the store. A skipped
// paper returns util.ErrAbstractOnly; a title already ingested returns
// util.ErrDuplicateTitle. Chunk count is reported on success.
func (s *System) AddPaper(ctx context.Context, path string) (*models.Paper, int, error) {
	out, err := s.processor.ProcessFile(path)
	if err != nil {
		return nil, 0, err
	}
	existing, err := s.store.ExistingTitles(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, title := range existing {
		if title == out.Paper.Title {
			return nil, 0, fmt.Errorf("%s: %w", out.Paper.Title, util.ErrDuplicateTitle)
		}
	}
	if err := s.storePaper(ctx, out); err != nil {
		return nil, 0, err
	}
	return &out.Paper, len(out.Chunks), nil
}

// AddPapersFromFolder ingests every .xml file in a folder. Abstract-only
// papers, duplicates and per-file failures are logged and skipped; one bad
// paper never stops the batch.
func (s *System) AddPapersFromFolder(ctx context.Context, folder string, clearExisting bool) (IngestSummary, error) {
	var summary IngestSummary

	if clearExisting {
		log.Println("clearing existing data for fresh rebuild")
		if err := s.store.Clear(ctx); err != nil {
			return summary, err
		}
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return summary, fmt.Errorf("read papers folder: %w", err)
	}

	titles, err := s.store.ExistingTitles(ctx)
	if err != nil {
		return summary, err
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".xml") {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		out, err := s.processor.ProcessFile(path)
		if err != nil {
			if errors.Is(err, util.ErrAbstractOnly) {
				log.Printf("skipping %s: %v", entry.Name(), err)
				summary.Skipped++
			} else {
				log.Printf("error processing %s: %v", entry.Name(), err)
				summary.Failed++
			}
			continue
		}
		if existing[out.Paper.Title] {
			log.Printf("paper already exists: %.60s - skipping", out.Paper.Title)
			summary.Skipped++
			continue
		}
		if err := s.storePaper(ctx, out); err != nil {
			log.Printf("error storing %s: %v", entry.Name(), err)
			summary.Failed++
			continue
		}
		existing[out.Paper.Title] = true
		summary.PapersAdded++
		summary.ChunksAdded += len(out.Chunks)
		log.Printf("added paper: %.80s (%d chunks)", out.Paper.Title, len(out.Chunks))
	}
	return summary, nil
}

func (s *System) storePaper(ctx context.Context, out *jats.ProcessedPaper) error {
	if err := s.store.AddPaper(ctx, out.Paper); err != nil {
		return err
	}
	return s.store.AddChunks(ctx, out.Chunks)
}

// Query answers one question within a session. History is loaded before
// the model call and the new exchange recorded after, so consecutive
// questions in a session build on each other.
func (s *System) Query(ctx context.Context, question, sessionID string) (Answer, error) {
	var history string
	if sessionID != "" {
		h, err := s.sessions.History(ctx, sessionID)
		if err != nil {
			return Answer{}, fmt.Errorf("load session history: %w", err)
		}
		history = h
	}

	response, sources, err := s.generator.Answer(ctx, question, history)
	if err != nil {
		return Answer{}, err
	}

	if sessionID != "" {
		if err := s.sessions.AddExchange(ctx, sessionID, question, response); err != nil {
			return Answer{}, fmt.Errorf("record session exchange: %w", err)
		}
	}
	return Answer{Response: response, Sources: sources}, nil
}

// Analytics summarizes the ingested catalog.
type Analytics struct {
	TotalPapers int      `json:"total_papers"`
	PaperTitles []string `json:"paper_titles"`
	Topics      []string `json:"topics"`
}

func (s *System) Analytics(ctx context.Context) (Analytics, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Analytics{}, err
	}
	titles, err := s.store.ExistingTitles(ctx)
	if err != nil {
		return Analytics{}, err
	}
	topics, err := s.store.Topics(ctx)
	if err != nil {
		return Analytics{}, err
	}
	return Analytics{TotalPapers: count, PaperTitles: titles, Topics: topics}, nil
}

// Topics lists the distinct topic labels in the catalog.
func (s *System) Topics(ctx context.Context) ([]string, error) {
	return s.store.Topics(ctx)
}

// Papers lists every catalog entry.
func (s *System) Papers(ctx context.Context) ([]models.Paper, error) {
	return s.store.AllPapers(ctx)
}
