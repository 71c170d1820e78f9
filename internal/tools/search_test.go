package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"medlit/internal/models"
	"medlit/internal/vectorstore"
	"medlit/internal/vectorstore/memory"
)

func intp(v int) *int { return &v }

func seededSearchTool(t *testing.T) (*LiteratureSearch, *memory.Backend) {
	t.Helper()
	backend := memory.New()
	store := vectorstore.New(backend, 5, "paper_catalog", "paper_content")
	ctx := context.Background()

	papers := []models.Paper{
		{Title: "Statin Therapy Outcomes", PMCID: "PMC11111", Journal: "Cardiology Today", Year: intp(2019), Topic: "Cardiovascular Health"},
		{Title: "Beta Blockers Revisited", DOI: "10.1000/beta", Journal: "Heart Journal", Year: intp(2022), Topic: "Cardiovascular Health"},
	}
	for _, p := range papers {
		if err := store.AddPaper(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	chunks := []models.PaperChunk{
		{Content: "Statins reduced cardiovascular events.", PaperTitle: "Statin Therapy Outcomes", Journal: "Cardiology Today", Year: intp(2019), Topic: "Cardiovascular Health", SectionTitle: "Results", ChunkIndex: 0},
		{Content: "Statins also lowered LDL substantially.", PaperTitle: "Statin Therapy Outcomes", Journal: "Cardiology Today", Year: intp(2019), Topic: "Cardiovascular Health", SectionTitle: "Discussion", ChunkIndex: 1},
		{Content: "Beta blockers and statins were compared.", PaperTitle: "Beta Blockers Revisited", Journal: "Heart Journal", Year: intp(2022), Topic: "Cardiovascular Health", SectionTitle: "Methods", ChunkIndex: 0},
	}
	if err := store.AddChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}
	return NewLiteratureSearch(store), backend
}

func execute(t *testing.T, tool *LiteratureSearch, input string) Result {
	t.Helper()
	res, err := tool.Execute(context.Background(), json.RawMessage(input))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestExecuteFormatsResultsWithProvenanceHeaders(t *testing.T) {
	tool, _ := seededSearchTool(t)
	res := execute(t, tool, `{"query": "statins"}`)

	if !strings.Contains(res.Text, "[Statin Therapy Outcomes | Results]\nStatins reduced cardiovascular events.") {
		t.Fatalf("missing header block:\n%s", res.Text)
	}
	blocks := strings.Split(res.Text, "\n\n")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d:\n%s", len(blocks), res.Text)
	}
}

func TestExecuteDeduplicatesSourcesByTitle(t *testing.T) {
	tool, _ := seededSearchTool(t)
	res := execute(t, tool, `{"query": "statins"}`)

	if len(res.Sources) != 2 {
		t.Fatalf("expected 2 unique sources, got %d: %v", len(res.Sources), res.Sources)
	}
	first := res.Sources[0]
	if first.Text != "Statin Therapy Outcomes - 2019 - Cardiology Today" {
		t.Fatalf("source text: %q", first.Text)
	}
	if first.URL != "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC11111/" {
		t.Fatalf("source url: %q", first.URL)
	}
	if res.Sources[1].URL != "https://doi.org/10.1000/beta" {
		t.Fatalf("second source url: %q", res.Sources[1].URL)
	}
}

func TestExecuteTopicFilter(t *testing.T) {
	tool, _ := seededSearchTool(t)
	res := execute(t, tool, `{"query": "statins", "topic": "Cardiovascular Health"}`)
	if strings.HasPrefix(res.Text, "No relevant") {
		t.Fatalf("expected matches in topic: %s", res.Text)
	}
}

func TestExecuteEmptyResultEchoesFilters(t *testing.T) {
	tool, _ := seededSearchTool(t)
	res := execute(t, tool, `{"query": "statins", "topic": "Oncology", "paper_type": "Review", "min_year": 2020}`)

	want := "No relevant medical literature found in topic 'Oncology' of type 'Review' from years 2020-2100."
	if res.Text != want {
		t.Fatalf("empty message:\n got %q\nwant %q", res.Text, want)
	}
	if len(res.Sources) != 0 {
		t.Fatalf("empty search must carry no sources: %v", res.Sources)
	}
}

func TestExecuteMaxYearOnlyUsesMinSentinel(t *testing.T) {
	tool, _ := seededSearchTool(t)
	res := execute(t, tool, `{"query": "statins", "max_year": 2020}`)

	// 2022 paper excluded, 2019 chunks remain.
	if strings.Contains(res.Text, "Beta Blockers Revisited") {
		t.Fatalf("max_year filter leaked newer paper:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "Statin Therapy Outcomes") {
		t.Fatalf("expected older paper in results:\n%s", res.Text)
	}
}

func TestExecuteBackendFailureBecomesResultText(t *testing.T) {
	tool, backend := seededSearchTool(t)
	backend.FailWith(errors.New("connection refused"))

	res := execute(t, tool, `{"query": "statins"}`)
	if !strings.Contains(res.Text, "connection refused") {
		t.Fatalf("expected failure narration, got %q", res.Text)
	}
	if len(res.Sources) != 0 {
		t.Fatal("failed search must carry no sources")
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()
	res, err := reg.Execute(context.Background(), "nonexistent", json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Tool 'nonexistent' not found" {
		t.Fatalf("unknown tool message: %q", res.Text)
	}
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	tool, _ := seededSearchTool(t)
	reg := NewRegistry()
	if err := reg.Register(tool); err != nil {
		t.Fatal(err)
	}
	defs := reg.Definitions()
	if len(defs) != 1 || defs[0].Name != "search_medical_literature" {
		t.Fatalf("definitions: %v", defs)
	}
	required, _ := defs[0].InputSchema["required"].([]string)
	if len(required) != 1 || required[0] != "query" {
		t.Fatalf("required fields: %v", required)
	}
}
