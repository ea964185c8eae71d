package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "autopost/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Config configures the ledger store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Task is one pending retraction.
//
// ID is the sqlite rowid: unique and monotonically assigned at enqueue time,
// which makes insertion order the drain order.
type Task struct {
	ID        int64
	ChatID    int64
	MessageID int
	DueAt     time.Time
}

// Store is the durable deletion ledger.
//
// All methods are safe for concurrent use; sqlite serializes the writes
// (MaxOpenConns is pinned to 1) and every operation is a single statement,
// so no partial inserts or deletes are ever visible.
type Store struct {
	db  *sql.DB
	log logx.Logger
}

// Open opens (creating if needed) the ledger at cfg.Path and applies the
// schema. The same path must be reused across runs; pending rows survive
// restarts.
func Open(cfg Config, log logx.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("ledger path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Enqueue durably records that (chatID, messageID) must be retracted at dueAt.
// The insert is committed before Enqueue returns.
func (s *Store) Enqueue(ctx context.Context, chatID int64, messageID int, dueAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO deletions(chat_id, message_id, delete_at) VALUES(?,?,?)`,
		chatID, messageID, dueAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FetchDue returns up to limit tasks with delete_at <= now, oldest enqueued
// first. It never returns future rows.
func (s *Store) FetchDue(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, message_id, delete_at FROM deletions
		 WHERE delete_at <= ? ORDER BY id ASC LIMIT ?`,
		now.Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		var due int64
		if err := rows.Scan(&t.ID, &t.ChatID, &t.MessageID, &due); err != nil {
			return nil, err
		}
		t.DueAt = time.Unix(due, 0)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Remove deletes a ledger row. Removing a missing row is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deletions WHERE id = ?`, id)
	return err
}

// Pending returns the number of rows still waiting; used for startup logging.
func (s *Store) Pending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deletions`).Scan(&n)
	return n, err
}
