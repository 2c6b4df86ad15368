package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Store keeps chat history in a SQLite file
type Store struct {
	db *sql.DB
}

// dsn enables WAL and a busy timeout so concurrent handlers wait instead of failing
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
}

// Open runs pending migrations and opens the store at path
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}

	if err := RunMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_sessions (id, created_at) VALUES (?, ?)`,
		id.String(), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chat_sessions ORDER BY created_at DESC, rowid DESC`)
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

func (s *Store) SaveMessage(ctx context.Context, sessionID uuid.UUID, msg domain.HistoryMessage) error {
	facets, err := encodeFacets(msg.Facets)
	if err != nil {
		return err
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_sessions (id, created_at) VALUES (?, ?)`,
		sessionID.String(), createdAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_history (session_id, role, content, facets, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID.String(), string(msg.Role), msg.Content, facets, createdAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, facets, created_at FROM chat_history WHERE session_id = ? ORDER BY id`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.HistoryMessage{}
	for rows.Next() {
		var (
			m         domain.HistoryMessage
			role      string
			facets    sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&role, &m.Content, &facets, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(role)
		m.CreatedAt = time.UnixMilli(createdAt).UTC()
		if facets.Valid {
			if err := json.Unmarshal([]byte(facets.String), &m.Facets); err != nil {
				return nil, fmt.Errorf("failed to unmarshal facets: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// encodeFacets returns nil for a message without facets
func encodeFacets(f domain.Facets) (any, error) {
	if f.Data == nil && f.Columns == nil && f.SQL == "" && f.GraphData == nil && f.Hint == "" {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal facets: %w", err)
	}
	return string(data), nil
}
