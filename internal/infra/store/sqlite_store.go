package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flag_notification_agent/internal/domain/flag"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // sqlite driver
)

// PersistenceError wraps local snapshot read/write failures. Callers log and
// absorb it; a lost save only delays notifications, it never breaks the agent.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SQLiteStore persists the last observed flag state across agent restarts.
// One row per caller key holding a JSON array of snapshot entries; every save
// replaces the row wholesale.
type SQLiteStore struct {
	db        *sql.DB
	callerKey string
	log       *logrus.Entry
}

// NewSQLiteStore opens (and if needed creates) the snapshot database.
func NewSQLiteStore(dbPath, callerKey string, log *logrus.Entry) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS flag_snapshots (
			caller_key TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "migrate", Err: err}
	}

	return &SQLiteStore{db: db, callerKey: callerKey, log: log}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the last persisted snapshot. A missing row or unreadable
// payload yields an empty snapshot and no error: cold-start semantics apply,
// persistence problems are never fatal here.
func (s *SQLiteStore) Load() (flag.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM flag_snapshots WHERE caller_key = ?`, s.callerKey,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return flag.Snapshot{}, nil
	}
	if err != nil {
		s.log.WithError(err).Warn("Could not read persisted snapshot; treating as empty.")
		return flag.Snapshot{}, nil
	}

	var entries []flag.SnapshotEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		s.log.WithError(err).Warn("Persisted snapshot is corrupt; treating as empty.")
		return flag.Snapshot{}, nil
	}

	snap := make(flag.Snapshot, len(entries))
	for _, e := range entries {
		snap[e.FlagID] = e
	}
	return snap, nil
}

// Save projects the fetched records and replaces any prior snapshot for this
// caller in a single statement.
func (s *SQLiteStore) Save(records []flag.Record) error {
	entries := make([]flag.SnapshotEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, flag.ProjectRecord(r))
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO flag_snapshots (caller_key, payload, updated_at)
		VALUES (?, ?, ?)
	`, s.callerKey, string(payload), time.Now().Unix())
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}
