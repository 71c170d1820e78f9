package storage

import (
	"context"
	"fmt"
)

type QueryRecord struct {
	QueryID     string
	SessionID   string
	Question    string
	Model       string
	SourceCount int
	Status      string
}

// QueryAuditRepo records every answered question for offline review of
// what the assistant was asked and how it responded.
type QueryAuditRepo struct {
	db *DB
}

func NewQueryAuditRepo(db *DB) *QueryAuditRepo {
	return &QueryAuditRepo{db: db}
}

func (r *QueryAuditRepo) Insert(ctx context.Context, rec QueryRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO query_audit(query_id, session_id, question, model, source_count, status)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), NULLIF($2,''), $3, $4, $5, $6)`,
		rec.QueryID, rec.SessionID, rec.Question, rec.Model, rec.SourceCount, rec.Status)
	if err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}
