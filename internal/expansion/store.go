package expansion

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type migration struct {
	Version     int
	Description string
	Up          string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial shortcuts table",
		Up: `
CREATE TABLE IF NOT EXISTS shortcuts (
    trigger     TEXT PRIMARY KEY,
    replacement TEXT NOT NULL,
    enabled     INTEGER NOT NULL DEFAULT 1,
    method      TEXT NOT NULL DEFAULT 'all',
    condition   TEXT NOT NULL DEFAULT 'word_boundary',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);`,
	},
	{
		Version:     2,
		Description: "Index shortcuts by method",
		Up:          `CREATE INDEX IF NOT EXISTS idx_shortcuts_method ON shortcuts(method, enabled);`,
	},
}

// Store is the SQLite-backed dictionary.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the dictionary database at path and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			applied_at  INTEGER NOT NULL,
			description TEXT
		)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			m.Version, time.Now().UnixNano(), m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                 Entry
		enabled           int
		method, condition string
	)
	if err := row.Scan(&e.Trigger, &e.Replacement, &enabled, &method, &condition); err != nil {
		return Entry{}, err
	}
	e.Enabled = enabled != 0
	var err error
	if e.Method, err = ParseMethod(method); err != nil {
		return Entry{}, err
	}
	if e.Condition, err = ParseCondition(condition); err != nil {
		return Entry{}, err
	}
	return e, nil
}

const entryColumns = "trigger, replacement, enabled, method, condition"

// List returns every entry ordered by trigger.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query("SELECT " + entryColumns + " FROM shortcuts ORDER BY trigger")
	if err != nil {
		return nil, fmt.Errorf("query shortcuts: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shortcut: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the entry for trigger.
func (s *Store) Get(trigger string) (Entry, error) {
	e, err := scanEntry(s.db.QueryRow(
		"SELECT "+entryColumns+" FROM shortcuts WHERE trigger = ?",
		New(trigger, "").Normalize().Trigger,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get shortcut: %w", err)
	}
	return e, nil
}

// Count returns the number of entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM shortcuts").Scan(&n)
	return n, err
}

// Put inserts or replaces e. A new trigger beyond MaxEntries fails with
// ErrFull.
func (s *Store) Put(e Entry) error {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.put(tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// put reports whether e was new.
func (s *Store) put(tx *sql.Tx, e Entry) (bool, error) {
	var exists, total int
	if err := tx.QueryRow(
		"SELECT (SELECT COUNT(*) FROM shortcuts WHERE trigger = ?), (SELECT COUNT(*) FROM shortcuts)",
		e.Trigger,
	).Scan(&exists, &total); err != nil {
		return false, fmt.Errorf("count shortcuts: %w", err)
	}
	if exists == 0 && total >= MaxEntries {
		return false, ErrFull
	}

	now := s.now().UnixNano()
	enabled := 0
	if e.Enabled {
		enabled = 1
	}
	if _, err := tx.Exec(`
		INSERT INTO shortcuts (trigger, replacement, enabled, method, condition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trigger) DO UPDATE SET
			replacement = excluded.replacement,
			enabled     = excluded.enabled,
			method      = excluded.method,
			condition   = excluded.condition,
			updated_at  = excluded.updated_at`,
		e.Trigger, e.Replacement, enabled, e.Method.String(), e.Condition.String(), now, now,
	); err != nil {
		return false, fmt.Errorf("upsert shortcut: %w", err)
	}
	return exists == 0, nil
}

// Delete removes trigger.
func (s *Store) Delete(trigger string) error {
	res, err := s.db.Exec("DELETE FROM shortcuts WHERE trigger = ?", New(trigger, "").Normalize().Trigger)
	if err != nil {
		return fmt.Errorf("delete shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled enables or disables trigger.
func (s *Store) SetEnabled(trigger string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	res, err := s.db.Exec("UPDATE shortcuts SET enabled = ?, updated_at = ? WHERE trigger = ?",
		v, s.now().UnixNano(), New(trigger, "").Normalize().Trigger)
	if err != nil {
		return fmt.Errorf("update shortcut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Added   int
	Updated int
	// Skipped counts entries dropped because the dictionary was full.
	Skipped int
}

// Import stores doc's entries in one transaction. With replace set the
// dictionary is emptied first. Entries beyond capacity are skipped.
func (s *Store) Import(doc Document, replace bool) (ImportResult, error) {
	var res ImportResult
	if doc.Version != DocumentVersion {
		return res, fmt.Errorf("expansion: unsupported document version %d", doc.Version)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.Exec("DELETE FROM shortcuts"); err != nil {
			return res, fmt.Errorf("clear shortcuts: %w", err)
		}
	}
	for _, e := range doc.Shortcuts {
		e = e.Normalize()
		if err := e.Validate(); err != nil {
			return ImportResult{}, err
		}
		added, err := s.put(tx, e)
		switch {
		case errors.Is(err, ErrFull):
			res.Skipped++
		case err != nil:
			return ImportResult{}, err
		case added:
			res.Added++
		default:
			res.Updated++
		}
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return res, nil
}

// Export returns the whole dictionary as a document.
func (s *Store) Export() (Document, error) {
	entries, err := s.List()
	if err != nil {
		return Document{}, err
	}
	return NewDocument(entries), nil
}

// Seed stores the default entries when the dictionary is empty.
func (s *Store) Seed() (int, error) {
	n, err := s.Count()
	if err != nil || n > 0 {
		return 0, err
	}
	res, err := s.Import(NewDocument(Defaults()), false)
	return res.Added, err
}
