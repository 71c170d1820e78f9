package models

// Paper is one medical research paper. Title doubles as the identity key
// across the catalog: re-ingesting the same title is treated as a duplicate
// and skipped, never overwritten.
type Paper struct {
	Title     string   `json:"title"`
	PMCID     string   `json:"pmcid,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	Year      *int     `json:"year,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	PaperType string   `json:"paper_type,omitempty"`
	Topic     string   `json:"topic,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// PaperChunk is one retrievable text segment. Content carries a
// "Paper: ... | Section: ..." header line so the chunk stays attributable
// after it leaves the catalog. Paper fields are denormalized onto the chunk
// because the similarity backend cannot join back to the paper at query time.
type PaperChunk struct {
	Content      string `json:"content"`
	PaperTitle   string `json:"paper_title"`
	PMCID        string `json:"pmcid,omitempty"`
	DOI          string `json:"doi,omitempty"`
	Journal      string `json:"journal,omitempty"`
	Year         *int   `json:"year,omitempty"`
	Topic        string `json:"topic,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
}

// Source is a citation surfaced alongside an answer.
type Source struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}
