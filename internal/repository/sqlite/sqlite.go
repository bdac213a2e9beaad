// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, works
// everywhere Go works.
//
// UNIQUENESS LIVES IN THE SCHEMA:
// Every invariant the favorites layer relies on is a constraint here, not a
// check-then-act in Go code:
//   - accounts.username and accounts.email are UNIQUE
//   - games.rawg_id is UNIQUE
//   - characters (name, game_id) is UNIQUE
//   - each favorites table is UNIQUE on (account_id, <collectible>_id)
//
// Writes that could race use INSERT ... ON CONFLICT DO NOTHING, so two
// concurrent requests converge on one row instead of creating duplicates.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface in internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/gamehub.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
//
// Pragmas go in the DSN so they apply to every pooled connection, not just
// the first one.
func New(dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is its own empty database, so the pool
	// must never hold more than one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /healthz.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates all tables. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			profile_image TEXT NOT NULL DEFAULT '',
			banner_image  TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	// platforms and genres are JSON arrays; order matters and they are
	// never queried by element.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id          TEXT PRIMARY KEY,
			rawg_id     INTEGER NOT NULL UNIQUE,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			rating      REAL NOT NULL DEFAULT 0,
			released    TEXT NOT NULL DEFAULT '',
			platforms   TEXT NOT NULL DEFAULT '[]',
			genres      TEXT NOT NULL DEFAULT '[]',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating games table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS characters (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			game_id       TEXT NOT NULL,
			game_title    TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			image         TEXT NOT NULL DEFAULT '',
			aliases       TEXT NOT NULL DEFAULT '[]',
			gender        TEXT NOT NULL DEFAULT '',
			origin        TEXT NOT NULL DEFAULT '',
			giant_bomb_id TEXT NOT NULL DEFAULT '',
			rawg_id       INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (name, game_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating characters table: %w", err)
	}

	// seq is the insertion order of favorites; listing sorts by it.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorite_games (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			game_id    TEXT NOT NULL REFERENCES games(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (account_id, game_id)
		);
		CREATE TABLE IF NOT EXISTS favorite_characters (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id   TEXT NOT NULL REFERENCES accounts(id),
			character_id TEXT NOT NULL REFERENCES characters(id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (account_id, character_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating favorites tables: %w", err)
	}

	return nil
}

// uniqueViolation reports whether err is a UNIQUE constraint failure and, if
// so, which column caused it. SQLite's message looks like
//
//	UNIQUE constraint failed: accounts.username
//
// For compound keys the first column is returned.
func uniqueViolation(err error) (column string, ok bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	if sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return "", false
	}

	const marker = "UNIQUE constraint failed: "
	msg := sqliteErr.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", true
	}
	detail := msg[i+len(marker):]
	if j := strings.Index(detail, " ("); j >= 0 {
		detail = detail[:j]
	}
	first, _, _ := strings.Cut(detail, ",")
	if _, col, found := strings.Cut(strings.TrimSpace(first), "."); found {
		return col, true
	}
	return strings.TrimSpace(first), true
}

// batchSize bounds the ids bound into one IN (...) list. SQLite rejects a
// statement with more than 32766 variables.
const batchSize = 500

// chunkIDs splits ids into slices of at most batchSize.
func chunkIDs(ids []string) [][]string {
	chunks := make([][]string, 0, (len(ids)+batchSize-1)/batchSize)
	for len(ids) > batchSize {
		chunks = append(chunks, ids[:batchSize])
		ids = ids[batchSize:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// encodeList stores a string slice as a JSON array. nil becomes "[]".
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

// toArgs converts ids for use with an IN (...) clause.
func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
