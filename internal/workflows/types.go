package workflows

type CorpusIngestInput struct {
	InputDir      string `json:"input_dir"`
	ClearExisting bool   `json:"clear_existing"`
}

type CorpusIngestProgress struct {
	Total       int               `json:"total"`
	Done        int               `json:"done"`
	PapersAdded int               `json:"papers_added"`
	ChunksAdded int               `json:"chunks_added"`
	Skipped     int               `json:"skipped"`
	Failed      int               `json:"failed"`
	PerPaper    map[string]string `json:"per_paper_status"`
}
