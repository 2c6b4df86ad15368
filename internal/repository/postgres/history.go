package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// HistoryRepository implements domain.HistoryRepository on PostgreSQL
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) CreateSession(ctx context.Context, id uuid.UUID) error {
	query := `
		INSERT INTO chat_sessions (id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListSessions(ctx context.Context) ([]domain.Session, error) {
	query := `
		SELECT id::text
		FROM chat_sessions
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *HistoryRepository) SaveMessage(ctx context.Context, sessionID uuid.UUID, msg domain.HistoryMessage) error {
	var facets []byte
	if hasFacets(msg.Facets) {
		var err error
		facets, err = json.Marshal(msg.Facets)
		if err != nil {
			return fmt.Errorf("failed to marshal facets: %w", err)
		}
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_sessions (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			sessionID, createdAt,
		); err != nil {
			return fmt.Errorf("failed to register session: %w", err)
		}

		query := `
			INSERT INTO chat_history (session_id, role, content, facets, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query, sessionID, string(msg.Role), msg.Content, facets, createdAt); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		return nil
	})
}

func (r *HistoryRepository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	query := `
		SELECT role, content, facets, created_at
		FROM chat_history
		WHERE session_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.HistoryMessage{}
	for rows.Next() {
		var (
			m      domain.HistoryMessage
			role   string
			facets []byte
		)
		if err := rows.Scan(&role, &m.Content, &facets, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		if len(facets) > 0 {
			if err := json.Unmarshal(facets, &m.Facets); err != nil {
				return nil, fmt.Errorf("failed to unmarshal facets: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *HistoryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *HistoryRepository) Close() error {
	r.pool.Close()
	return nil
}

func hasFacets(f domain.Facets) bool {
	return f.Data != nil || f.Columns != nil || f.SQL != "" || f.GraphData != nil || f.Hint != ""
}
