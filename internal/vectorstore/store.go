package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"medlit/internal/models"
)

// Store is the evidence-store facade: a query/filter contract over the
// similarity backend plus catalog bookkeeping for ingested papers. Two
// collections back it: the catalog holds one entry per paper keyed by title,
// the content collection holds the chunks.
type Store struct {
	backend    Backend
	maxResults int
	catalog    string
	content    string
}

// YearRange is an inclusive publication-year window.
type YearRange struct {
	Min int
	Max int
}

func New(backend Backend, maxResults int, catalogCollection, contentCollection string) *Store {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Store{
		backend:    backend,
		maxResults: maxResults,
		catalog:    catalogCollection,
		content:    contentCollection,
	}
}

// Search runs one filtered similarity query over paper content. Backend
// failures come back inside the result, never as a fault: one bad search
// must not take the session down.
func (s *Store) Search(ctx context.Context, query, topic, paperType string, years *YearRange, limit int) SearchResults {
	if limit <= 0 {
		limit = s.maxResults
	}
	res, err := s.backend.Query(ctx, s.content, query, buildWhere(topic, paperType, years), limit)
	if err != nil {
		return errorResults(fmt.Errorf("search error: %v", err))
	}
	return SearchResults{Documents: res.Documents, Metadatas: res.Metadatas, Distances: res.Distances}
}

// buildWhere assembles the backend filter. A single criterion is passed
// bare, not wrapped in a one-element conjunction: some backends reject
// single-element $and lists.
func buildWhere(topic, paperType string, years *YearRange) map[string]any {
	filters := make([]map[string]any, 0, 3)
	if topic != "" {
		filters = append(filters, map[string]any{"topic": topic})
	}
	if paperType != "" {
		filters = append(filters, map[string]any{"paper_type": paperType})
	}
	if years != nil {
		filters = append(filters, map[string]any{"year": map[string]any{"$gte": years.Min, "$lte": years.Max}})
	}
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return map[string]any{"$and": filters}
	}
}

// AddPaper writes the paper's catalog entry. The searchable text is the
// title plus keywords; everything else rides along as flat metadata.
// Duplicate-title avoidance is the ingestion orchestrator's job, not ours.
func (s *Store) AddPaper(ctx context.Context, paper models.Paper) error {
	doc := paper.Title
	if len(paper.Keywords) > 0 {
		doc += " " + strings.Join(paper.Keywords, " ")
	}
	meta := map[string]any{"title": paper.Title}
	putString(meta, "topic", paper.Topic)
	putString(meta, "journal", paper.Journal)
	putString(meta, "paper_type", paper.PaperType)
	putString(meta, "pmcid", paper.PMCID)
	putString(meta, "doi", paper.DOI)
	if paper.Year != nil {
		meta["year"] = *paper.Year
	}
	authors, _ := json.Marshal(paper.Authors)
	keywords, _ := json.Marshal(paper.Keywords)
	meta["authors_json"] = string(authors)
	meta["keywords_json"] = string(keywords)
	meta["author_count"] = len(paper.Authors)

	if err := s.backend.Add(ctx, s.catalog, []string{paper.Title}, []string{doc}, []map[string]any{meta}); err != nil {
		return fmt.Errorf("add paper record: %w", err)
	}
	return nil
}

// AddChunks writes one paper's content chunks in a batch. Chunk ids derive
// from (title, index) so re-ingestion under the same title collides instead
// of multiplying.
func (s *Store) AddChunks(ctx context.Context, chunks []models.PaperChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, 0, len(chunks))
	docs := make([]string, 0, len(chunks))
	metas := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, chunkID(c.PaperTitle, c.ChunkIndex))
		docs = append(docs, c.Content)
		meta := map[string]any{
			"paper_title": c.PaperTitle,
			"chunk_index": c.ChunkIndex,
		}
		putString(meta, "topic", c.Topic)
		putString(meta, "section_title", c.SectionTitle)
		putString(meta, "pmcid", c.PMCID)
		putString(meta, "doi", c.DOI)
		putString(meta, "journal", c.Journal)
		if c.Year != nil {
			meta["year"] = *c.Year
		}
		metas = append(metas, meta)
	}
	if err := s.backend.Add(ctx, s.content, ids, docs, metas); err != nil {
		return fmt.Errorf("add chunks: %w", err)
	}
	return nil
}

// Clear drops both collections for a fresh rebuild.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Reset(ctx, s.catalog); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	if err := s.backend.Reset(ctx, s.content); err != nil {
		return fmt.Errorf("clear content: %w", err)
	}
	return nil
}

// ExistingTitles lists every ingested paper title (catalog ids are titles).
func (s *Store) ExistingTitles(ctx context.Context) ([]string, error) {
	res, err := s.backend.Get(ctx, s.catalog, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list existing titles: %w", err)
	}
	return res.IDs, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.backend.Count(ctx, s.catalog)
	if err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return n, nil
}

// PaperURL resolves a title to an external link, preferring the PMC article
// page over the DOI resolver. Empty when the paper carries neither id.
func (s *Store) PaperURL(ctx context.Context, title string) (string, error) {
	res, err := s.backend.Get(ctx, s.catalog, []string{title}, nil)
	if err != nil {
		return "", fmt.Errorf("get paper url: %w", err)
	}
	if len(res.Metadatas) == 0 {
		return "", nil
	}
	meta := res.Metadatas[0]
	if pmcid := metaString(meta, "pmcid"); pmcid != "" {
		return fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", pmcid), nil
	}
	if doi := metaString(meta, "doi"); doi != "" {
		return "https://doi.org/" + doi, nil
	}
	return "", nil
}

// Topics returns the sorted set of distinct topic labels in the catalog.
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	res, err := s.backend.Get(ctx, s.catalog, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	seen := map[string]bool{}
	for _, meta := range res.Metadatas {
		if t := metaString(meta, "topic"); t != "" {
			seen[t] = true
		}
	}
	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics, nil
}

// PapersByTopic returns the titles of every paper filed under a topic.
func (s *Store) PapersByTopic(ctx context.Context, topic string) ([]string, error) {
	res, err := s.backend.Get(ctx, s.catalog, nil, map[string]any{"topic": topic})
	if err != nil {
		return nil, fmt.Errorf("list papers by topic: %w", err)
	}
	return res.IDs, nil
}

// AllPapers reads every catalog entry back into Paper records, decoding the
// JSON-serialized list fields.
func (s *Store) AllPapers(ctx context.Context) ([]models.Paper, error) {
	res, err := s.backend.Get(ctx, s.catalog, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	papers := make([]models.Paper, 0, len(res.Metadatas))
	for _, meta := range res.Metadatas {
		p := models.Paper{
			Title:     metaString(meta, "title"),
			Topic:     metaString(meta, "topic"),
			Journal:   metaString(meta, "journal"),
			PaperType: metaString(meta, "paper_type"),
			PMCID:     metaString(meta, "pmcid"),
			DOI:       metaString(meta, "doi"),
		}
		if y, ok := metaInt(meta, "year"); ok {
			p.Year = &y
		}
		_ = json.Unmarshal([]byte(metaString(meta, "authors_json")), &p.Authors)
		_ = json.Unmarshal([]byte(metaString(meta, "keywords_json")), &p.Keywords)
		papers = append(papers, p)
	}
	return papers, nil
}

func chunkID(title string, index int) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(title)
	return safe + "_" + strconv.Itoa(index)
}

func putString(meta map[string]any, key, value string) {
	if value != "" {
		meta[key] = value
	}
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
