package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
-- The 'kv' table is the durable side of the resilient store: one JSON
-- document per engine key.
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLite is the durable backend used in normal operation: a single
// key/value table in a local sqlite file.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at dsn and
// ensures the schema is in place.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{conn: db}, nil
}

// Load returns every stored key and value.
func (b *SQLite) Load() (map[string]string, error) {
	rows, err := b.conn.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("failed to load kv rows: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read kv rows: %w", err)
	}
	return out, nil
}

// Put inserts or overwrites the value stored under key.
func (b *SQLite) Put(key, value string) error {
	_, err := b.conn.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// Delete removes the row for key, if any.
func (b *SQLite) Delete(key string) error {
	if _, err := b.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Clear removes every row.
func (b *SQLite) Clear() error {
	if _, err := b.conn.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to clear kv table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *SQLite) Close() error {
	return b.conn.Close()
}
