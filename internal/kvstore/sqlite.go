package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	device_id  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (device_id, key)
);
`

// SQLiteStore is a device-scoped key-value store backed by SQLite.
type SQLiteStore struct {
	conn     *sql.DB
	deviceID string
}

// Open opens (or creates) the SQLite database, applies the schema, and
// scopes all subsequent operations to deviceID.
func Open(dsn, deviceID string) (*SQLiteStore, error) {
	if deviceID == "" {
		return nil, ErrNoIdentity
	}

	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("kvstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: apply schema: %w", err)
	}

	return &SQLiteStore{conn: conn, deviceID: deviceID}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE device_id = ? AND key = ?`,
		s.deviceID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key. Each write replaces the row wholesale.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv (device_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id, key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, s.deviceID, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key. Deleting a missing key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM kv WHERE device_id = ? AND key = ?`, s.deviceID, key,
	); err != nil {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

var _ Store = (*SQLiteStore)(nil)
