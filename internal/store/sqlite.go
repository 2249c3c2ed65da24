package store

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	_ "modernc.org/sqlite"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store. Session transcripts are held
// zstd-compressed.
type SQLite struct {
	mu  sync.Mutex
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			line TEXT NOT NULL,
			ts TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sessions (
			name TEXT PRIMARY KEY,
			transcript BLOB NOT NULL,
			ts TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db, enc: enc, dec: dec}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	if version == "" {
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// AppendLine records an executed input line in the history.
func (s *SQLite) AppendLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO history (line, ts) VALUES (?, ?)",
		line, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Lines returns up to limit history lines, oldest first.
func (s *SQLite) Lines(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT line FROM history ORDER BY id"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		// Keep the most recent limit lines, still oldest first.
		query = `SELECT line FROM (
			SELECT id, line FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		rows, err = s.db.Query(query, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// SaveSession stores a transcript under name.
func (s *SQLite) SaveSession(name string, transcript []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := s.enc.EncodeAll(transcript, nil)
	_, err := s.db.Exec(`
		INSERT INTO sessions (name, transcript, ts) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET transcript = excluded.transcript, ts = excluded.ts
	`, name, blob, time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadSession retrieves a transcript by name. Returns nil if not found.
func (s *SQLite) LoadSession(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow("SELECT transcript FROM sessions WHERE name = ?", name).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.dec.DecodeAll(blob, nil)
}

// Sessions lists the saved session names, sorted.
func (s *SQLite) Sessions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
