package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"medlit/internal/vectorstore"
)

// Backend is an in-process similarity backend with deterministic ranking,
// used for tests and offline runs. Relevance is token overlap between the
// query and the document: distance 0 means every query token appears,
// distance 1 means none do. Ties keep insertion order.
type Backend struct {
	mu          sync.Mutex
	collections map[string]*collection
	failWith    error
}

type collection struct {
	ids   []string
	docs  map[string]string
	metas map[string]map[string]any
}

func New() *Backend {
	return &Backend{collections: make(map[string]*collection)}
}

var _ vectorstore.Backend = (*Backend)(nil)

// FailWith makes every subsequent call return err; nil restores normal
// operation. Lets tests exercise the degraded-search path.
func (b *Backend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWith = err
}

func (b *Backend) Add(ctx context.Context, name string, ids, documents []string, metadatas []map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return b.failWith
	}
	col := b.collection(name)
	for i, id := range ids {
		if _, exists := col.docs[id]; !exists {
			col.ids = append(col.ids, id)
		}
		col.docs[id] = documents[i]
		col.metas[id] = metadatas[i]
	}
	return nil
}

func (b *Backend) Query(ctx context.Context, name, text string, where map[string]any, limit int) (vectorstore.QueryResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return vectorstore.QueryResult{}, b.failWith
	}
	col := b.collection(name)
	type ranked struct {
		id       string
		distance float64
		order    int
	}
	var hits []ranked
	for i, id := range col.ids {
		if !matchesWhere(col.metas[id], where) {
			continue
		}
		hits = append(hits, ranked{id: id, distance: distance(text, col.docs[id]), order: i})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].order < hits[j].order
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := vectorstore.QueryResult{}
	for _, h := range hits {
		out.Documents = append(out.Documents, col.docs[h.id])
		out.Metadatas = append(out.Metadatas, col.metas[h.id])
		out.Distances = append(out.Distances, h.distance)
	}
	return out, nil
}

func (b *Backend) Get(ctx context.Context, name string, ids []string, where map[string]any) (vectorstore.GetResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return vectorstore.GetResult{}, b.failWith
	}
	col := b.collection(name)
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	out := vectorstore.GetResult{}
	for _, id := range col.ids {
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		if !matchesWhere(col.metas[id], where) {
			continue
		}
		out.IDs = append(out.IDs, id)
		out.Metadatas = append(out.Metadatas, col.metas[id])
	}
	return out, nil
}

func (b *Backend) Count(ctx context.Context, name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return 0, b.failWith
	}
	return len(b.collection(name).ids), nil
}

func (b *Backend) Reset(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return b.failWith
	}
	delete(b.collections, name)
	return nil
}

func (b *Backend) collection(name string) *collection {
	col, ok := b.collections[name]
	if !ok {
		col = &collection{docs: map[string]string{}, metas: map[string]map[string]any{}}
		b.collections[name] = col
	}
	return col
}

// distance is 1 minus the fraction of query tokens present in the document.
func distance(query, doc string) float64 {
	qTokens := tokens(query)
	if len(qTokens) == 0 {
		return 1
	}
	dTokens := map[string]bool{}
	for _, t := range tokens(doc) {
		dTokens[t] = true
	}
	matched := 0
	for _, t := range qTokens {
		if dTokens[t] {
			matched++
		}
	}
	return 1 - float64(matched)/float64(len(qTokens))
}

func tokens(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// matchesWhere evaluates the filter grammar the store emits: bare equality,
// {"$and": [...]} conjunctions and {"$gte"/"$lte"} range predicates.
func matchesWhere(meta, where map[string]any) bool {
	if len(where) == 0 {
		return true
	}
	for key, cond := range where {
		if key == "$and" {
			clauses, ok := cond.([]map[string]any)
			if !ok {
				return false
			}
			for _, clause := range clauses {
				if !matchesWhere(meta, clause) {
					return false
				}
			}
			continue
		}
		switch c := cond.(type) {
		case map[string]any:
			val, ok := asFloat(meta[key])
			if !ok {
				return false
			}
			if min, has := c["$gte"]; has {
				if bound, ok := asFloat(min); !ok || val < bound {
					return false
				}
			}
			if max, has := c["$lte"]; has {
				if bound, ok := asFloat(max); !ok || val > bound {
					return false
				}
			}
		default:
			if meta[key] != cond {
				return false
			}
		}
	}
	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
