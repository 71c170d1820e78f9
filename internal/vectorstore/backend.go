package vectorstore

import "context"

// QueryResult is one similarity query's ranked output. Distances are
// dissimilarity scores: lower is more relevant.
type QueryResult struct {
	Documents []string
	Metadatas []map[string]any
	Distances []float64
}

// GetResult is a metadata read by id or predicate, no ranking involved.
type GetResult struct {
	IDs       []string
	Metadatas []map[string]any
}

// Backend is the opaque similarity-search service the store delegates to.
// It owns embedding, relevance ranking and predicate filtering; metadata
// values are flat scalars (list-valued fields travel as serialized JSON).
type Backend interface {
	Add(ctx context.Context, collection string, ids, documents []string, metadatas []map[string]any) error
	Query(ctx context.Context, collection, text string, where map[string]any, limit int) (QueryResult, error)
	Get(ctx context.Context, collection string, ids []string, where map[string]any) (GetResult, error)
	Count(ctx context.Context, collection string) (int, error)
	Reset(ctx context.Context, collection string) error
}
