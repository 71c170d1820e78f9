package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"medlit/internal/llm"
	"medlit/internal/models"
	"medlit/internal/vectorstore"
)

// Year sentinels substitute for an open bound so a half-specified range
// still maps onto the store's inclusive window.
const (
	minYearSentinel = 1900
	maxYearSentinel = 2100
)

// LiteratureSearch is the model-invocable search over ingested papers.
type LiteratureSearch struct {
	store *vectorstore.Store
}

func NewLiteratureSearch(store *vectorstore.Store) *LiteratureSearch {
	return &LiteratureSearch{store: store}
}

func (t *LiteratureSearch) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "search_medical_literature",
		Description: "Search medical research papers with optional filters for topic, paper type, and publication year",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the medical literature (e.g., 'diabetes treatment', 'hypertension management')",
				},
				"topic": map[string]any{
					"type":        "string",
					"description": "Filter by specific topic (e.g., 'Type 2 Diabetes Management', 'Mental Health', 'Cardiovascular Health')",
				},
				"paper_type": map[string]any{
					"type":        "string",
					"description": "Filter by paper type (e.g., 'Review', 'Meta-Analysis', 'Systematic Review')",
				},
				"min_year": map[string]any{
					"type":        "integer",
					"description": "Minimum publication year to include (e.g., 2020)",
				},
				"max_year": map[string]any{
					"type":        "integer",
					"description": "Maximum publication year to include (e.g., 2025)",
				},
			},
			"required": []string{"query"},
		},
	}
}

type searchInput struct {
	Query     string `json:"query"`
	Topic     string `json:"topic"`
	PaperType string `json:"paper_type"`
	MinYear   *int   `json:"min_year"`
	MaxYear   *int   `json:"max_year"`
}

func (t *LiteratureSearch) Execute(ctx context.Context, input json.RawMessage) (Result, error) {
	var args searchInput
	if err := json.Unmarshal(input, &args); err != nil {
		return Result{}, fmt.Errorf("decode search input: %w", err)
	}

	var years *vectorstore.YearRange
	if args.MinYear != nil || args.MaxYear != nil {
		years = &vectorstore.YearRange{Min: minYearSentinel, Max: maxYearSentinel}
		if args.MinYear != nil {
			years.Min = *args.MinYear
		}
		if args.MaxYear != nil {
			years.Max = *args.MaxYear
		}
	}

	results := t.store.Search(ctx, args.Query, args.Topic, args.PaperType, years, 0)
	if results.Err != nil {
		// Degraded search is narrated to the model, not raised.
		log.Printf("literature search failed: %v", results.Err)
		return Result{Text: results.Err.Error()}, nil
	}
	if results.IsEmpty() {
		return Result{Text: emptyMessage(args.Topic, args.PaperType, years)}, nil
	}
	return t.format(ctx, results), nil
}

func emptyMessage(topic, paperType string, years *vectorstore.YearRange) string {
	var b strings.Builder
	b.WriteString("No relevant medical literature found")
	if topic != "" {
		fmt.Fprintf(&b, " in topic '%s'", topic)
	}
	if paperType != "" {
		fmt.Fprintf(&b, " of type '%s'", paperType)
	}
	if years != nil {
		fmt.Fprintf(&b, " from years %d-%d", years.Min, years.Max)
	}
	b.WriteString(".")
	return b.String()
}

// format renders ranked chunks as "[title | section]" blocks and collects
// one source per paper, first occurrence wins.
func (t *LiteratureSearch) format(ctx context.Context, results vectorstore.SearchResults) Result {
	var blocks []string
	var sources []models.Source
	seen := map[string]bool{}

	for i, doc := range results.Documents {
		meta := map[string]any{}
		if i < len(results.Metadatas) {
			meta = results.Metadatas[i]
		}
		title := metaStringOr(meta, "paper_title", "Unknown Paper")
		section := metaStringOr(meta, "section_title", "")

		header := "[" + title
		if section != "" {
			header += " | " + section
		}
		header += "]"
		blocks = append(blocks, header+"\n"+doc)

		if !seen[title] {
			seen[title] = true
			sources = append(sources, models.Source{
				Text: fmt.Sprintf("%s - %s - %s", title, metaYearOr(meta, "Unknown Year"), metaStringOr(meta, "journal", "Unknown Journal")),
				URL:  t.paperURL(ctx, title),
			})
		}
	}
	return Result{Text: strings.Join(blocks, "\n\n"), Sources: sources}
}

func (t *LiteratureSearch) paperURL(ctx context.Context, title string) string {
	url, err := t.store.PaperURL(ctx, title)
	if err != nil {
		log.Printf("resolve paper url for %q: %v", title, err)
		return ""
	}
	return url
}

func metaStringOr(meta map[string]any, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func metaYearOr(meta map[string]any, fallback string) string {
	switch v := meta["year"].(type) {
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%d", int(v))
	}
	return fallback
}
