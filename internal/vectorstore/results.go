package vectorstore

// SearchResults carries ranked evidence or an error marker. An empty result
// with nil Err means "no matches"; Err set means the search itself failed.
// Callers must check Err before reading the slices.
type SearchResults struct {
	Documents []string
	Metadatas []map[string]any
	Distances []float64
	Err       error
}

func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}

func errorResults(err error) SearchResults {
	return SearchResults{Err: err}
}
