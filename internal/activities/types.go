package activities

import "medlit/internal/models"

type ListPapersInput struct {
	InputDir string `json:"input_dir"`
}

type ListPapersOutput struct {
	Paths []string `json:"paths"`
}

type ClearStoreInput struct{}

type ProcessPaperInput struct {
	PaperPath string `json:"paper_path"`
}

type ProcessPaperOutput struct {
	Paper  models.Paper        `json:"paper"`
	Chunks []models.PaperChunk `json:"chunks"`
	// Skipped is set with a reason when the paper is intentionally not
	// ingestible (abstract-only or restricted).
	Skipped string `json:"skipped,omitempty"`
}

type StorePaperInput struct {
	Paper  models.Paper        `json:"paper"`
	Chunks []models.PaperChunk `json:"chunks"`
}

type StorePaperOutput struct {
	// Duplicate is true when the title was already in the catalog and
	// nothing was written.
	Duplicate  bool `json:"duplicate"`
	ChunkCount int  `json:"chunk_count"`
}

type WriteIngestSummaryInput struct {
	Summary map[string]any `json:"summary"`
}

type WriteIngestSummaryOutput struct {
	Path string `json:"path"`
}
