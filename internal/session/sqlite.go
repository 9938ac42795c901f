package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// SQLiteStore keeps transcripts in a SQLite database so several processes,
// or a restarted one, can share sessions.
type SQLiteStore struct {
	db           *sql.DB
	systemPrompt string
}

func OpenSQLiteStore(path string, systemPrompt string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite session store: database path is not set")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite session store: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite session store: create schema: %w", err)
	}

	return &SQLiteStore{db: db, systemPrompt: systemPrompt}, nil
}

func (s *SQLiteStore) GetOrInit(ctx context.Context, id string) (Transcript, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.seed(ctx, tx, id); err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT role, content FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", id, err)
	}
	defer rows.Close()

	var transcript Transcript
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		transcript = append(transcript, llm.Message{Role: llm.MessageRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", id, err)
	}

	return transcript, tx.Commit()
}

func (s *SQLiteStore) Append(ctx context.Context, id string, msg llm.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	last, err := s.seed(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, seq, role, content) VALUES (?, ?, ?, ?)`,
		id, last+1, string(msg.Role), msg.Content); err != nil {
		return fmt.Errorf("append message to %s: %w", id, err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// seed inserts the system message for a new session and returns the highest
// sequence number in use.
func (s *SQLiteStore) seed(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM messages WHERE session_id = ?`, id).Scan(&last); err != nil {
		return 0, fmt.Errorf("read transcript %s: %w", id, err)
	}
	if last.Valid {
		return last.Int64, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, seq, role, content) VALUES (?, 0, ?, ?)`,
		id, string(llm.System), s.systemPrompt); err != nil {
		return 0, fmt.Errorf("seed transcript %s: %w", id, err)
	}
	return 0, nil
}
