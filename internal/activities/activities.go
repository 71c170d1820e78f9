package activities

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"medlit/internal/config"
	"medlit/internal/jats"
	"medlit/internal/util"
	"medlit/internal/vectorstore"
)

type Activities struct {
	cfg       config.Config
	processor *jats.Processor
	store     *vectorstore.Store
}

func New(cfg config.Config, processor *jats.Processor, store *vectorstore.Store) *Activities {
	return &Activities{cfg: cfg, processor: processor, store: store}
}

func (a *Activities) ListPapersActivity(ctx context.Context, in ListPapersInput) (ListPapersOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.InputDir)
	if err != nil {
		return ListPapersOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".xml") {
			paths = append(paths, filepath.Join(in.InputDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return ListPapersOutput{Paths: paths}, nil
}

func (a *Activities) ClearStoreActivity(ctx context.Context, in ClearStoreInput) error {
	_ = in
	return a.store.Clear(ctx)
}

// ProcessPaperActivity parses one paper file. An abstract-only paper is a
// normal outcome reported in Skipped, not an activity failure, so the
// workflow's retry policy never re-runs a deliberate skip.
func (a *Activities) ProcessPaperActivity(ctx context.Context, in ProcessPaperInput) (ProcessPaperOutput, error) {
	_ = ctx
	out, err := a.processor.ProcessFile(in.PaperPath)
	if err != nil {
		if errors.Is(err, util.ErrAbstractOnly) {
			return ProcessPaperOutput{Skipped: err.Error()}, nil
		}
		return ProcessPaperOutput{}, err
	}
	return ProcessPaperOutput{Paper: out.Paper, Chunks: out.Chunks}, nil
}

// StorePaperActivity writes one processed paper to the evidence store,
// unless its title is already cataloged.
func (a *Activities) StorePaperActivity(ctx context.Context, in StorePaperInput) (StorePaperOutput, error) {
	existing, err := a.store.ExistingTitles(ctx)
	if err != nil {
		return StorePaperOutput{}, err
	}
	for _, title := range existing {
		if title == in.Paper.Title {
			return StorePaperOutput{Duplicate: true}, nil
		}
	}
	if err := a.store.AddPaper(ctx, in.Paper); err != nil {
		return StorePaperOutput{}, err
	}
	if err := a.store.AddChunks(ctx, in.Chunks); err != nil {
		return StorePaperOutput{}, err
	}
	return StorePaperOutput{ChunkCount: len(in.Chunks)}, nil
}

func (a *Activities) WriteIngestSummaryActivity(ctx context.Context, in WriteIngestSummaryInput) (WriteIngestSummaryOutput, error) {
	_ = ctx
	outPath := filepath.Join(a.cfg.PapersDir, "ingest_summary.json")
	if err := util.WriteJSONAtomic(outPath, in.Summary); err != nil {
		return WriteIngestSummaryOutput{}, err
	}
	return WriteIngestSummaryOutput{Path: outPath}, nil
}
