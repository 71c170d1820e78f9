package storage

import (
	"context"
	"fmt"

	"medlit/internal/session"
)

// SessionRepo persists conversation exchanges in Postgres so session
// context survives process restarts. The exchanges table is append-only;
// the history window is a read-time concern.
type SessionRepo struct {
	db         *DB
	maxHistory int
}

func NewSessionRepo(db *DB, maxHistory int) *SessionRepo {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &SessionRepo{db: db, maxHistory: maxHistory}
}

// History renders the most recent exchanges oldest-first. The inner query
// selects the newest N, the outer one restores chronological order.
func (r *SessionRepo) History(ctx context.Context, sessionID string) (string, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT question, answer FROM (
    SELECT question, answer, created_at
    FROM session_exchanges
    WHERE session_id = $1
    ORDER BY created_at DESC
    LIMIT $2
) recent ORDER BY created_at ASC`, sessionID, r.maxHistory)
	if err != nil {
		return "", fmt.Errorf("query session history: %w", err)
	}
	defer rows.Close()

	var exchanges []session.Exchange
	for rows.Next() {
		var e session.Exchange
		if err := rows.Scan(&e.Question, &e.Answer); err != nil {
			return "", fmt.Errorf("scan session exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read session history: %w", err)
	}
	return session.Render(exchanges), nil
}

func (r *SessionRepo) AddExchange(ctx context.Context, sessionID, question, answer string) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO session_exchanges(session_id, question, answer)
VALUES ($1, $2, $3)`, sessionID, question, answer)
	if err != nil {
		return fmt.Errorf("insert session exchange: %w", err)
	}
	return nil
}
