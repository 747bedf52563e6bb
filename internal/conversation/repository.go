// Package conversation persists the durable chat transcript. The engine's
// working history lives in the checkpoint store; this is the record of what
// was actually said, grouped into sessions.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sessionWindow is the inactivity gap after which a new session id is minted.
const sessionWindow = 30 * time.Minute

// Message is one persisted transcript row.
type Message struct {
	ID        int64
	TenantID  uuid.UUID
	ThreadID  string
	SessionID uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// Repository writes and reads the transcript table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a conversation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LogMessage appends one message to the transcript. Messages within thirty
// minutes of the thread's latest message share its session id; a longer gap
// starts a fresh session.
func (r *Repository) LogMessage(ctx context.Context, tenantID uuid.UUID, threadID, role, content string) error {
	sessionID, err := r.resolveSession(ctx, tenantID, threadID)
	if err != nil {
		return err
	}

	query := `INSERT INTO chat_history_whatsapp (agent_id, thread_id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`
	if _, err := r.pool.Exec(ctx, query, tenantID, threadID, sessionID, role, content); err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	return nil
}

// History returns the latest messages for a thread in chronological order.
func (r *Repository) History(ctx context.Context, tenantID uuid.UUID, threadID string, limit int) ([]Message, error) {
	query := `SELECT id, agent_id, thread_id, session_id, role, content, created_at
		FROM chat_history_whatsapp
		WHERE agent_id = $1 AND thread_id = $2
		ORDER BY created_at DESC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, tenantID, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ThreadID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// Newest-first from the query, flip to chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *Repository) resolveSession(ctx context.Context, tenantID uuid.UUID, threadID string) (uuid.UUID, error) {
	query := `SELECT session_id, created_at FROM chat_history_whatsapp
		WHERE agent_id = $1 AND thread_id = $2
		ORDER BY created_at DESC LIMIT 1`

	var sessionID uuid.UUID
	var lastAt time.Time
	err := r.pool.QueryRow(ctx, query, tenantID, threadID).Scan(&sessionID, &lastAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.New(), nil
		}
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if time.Since(lastAt) > sessionWindow {
		return uuid.New(), nil
	}
	return sessionID, nil
}
