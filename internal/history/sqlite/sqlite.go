package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/summon/internal/history"
)

// Sink writes history events to SQLite database.
type Sink struct {
	db *sql.DB
}

// New creates a new SQLite history sink.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:" (in-memory database)
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}

	// Handle sqlite:// prefix
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// One connection: keeps :memory: databases alive and writes serialized
	db.SetMaxOpenConns(1)

	sink := &Sink{db: db}
	if err := sink.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	// Simple audit table, no primary key. Timestamp is unix milliseconds.
	stmt := `CREATE TABLE IF NOT EXISTS launch_history(
		timestamp INTEGER NOT NULL,
		query TEXT NOT NULL,
		display_name TEXT NOT NULL,
		target TEXT NOT NULL,
		success INTEGER NOT NULL,
		message TEXT
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	occur := e.OccurredAt
	if occur.IsZero() {
		occur = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launch_history(timestamp, query, display_name, target, success, message)
		VALUES(?, ?, ?, ?, ?, ?);`,
		occur.UnixMilli(), e.Query, e.DisplayName, e.Target, e.Success, e.Message)
	if err != nil {
		return fmt.Errorf("failed to insert history event: %w", err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (s *Sink) Recent(ctx context.Context, n int) ([]history.Event, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, query, display_name, target, success, COALESCE(message, '')
		FROM launch_history
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?;`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var events []history.Event
	for rows.Next() {
		var (
			millis int64
			e      history.Event
		)
		if err := rows.Scan(&millis, &e.Query, &e.DisplayName, &e.Target, &e.Success, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.OccurredAt = time.UnixMilli(millis)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ history.Sink = (*Sink)(nil)
