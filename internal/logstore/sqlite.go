package logstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ark-go/internal/ark"
	"ark-go/internal/logstore/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteRegistry implements Registry using SQLite.
type SQLiteRegistry struct {
	db   *sql.DB
	path string
}

// NewSQLiteRegistry opens (and migrates) a SQLite registry.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating registry database: %w", err)
	}

	return &SQLiteRegistry{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// CheckMigrations verifies the schema is at the latest version.
func (r *SQLiteRegistry) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(r.db)
}

func (r *SQLiteRegistry) CreateArchive(key string, isOwner bool) error {
	_, err := r.db.Exec(
		"INSERT INTO archives (key, is_owner, created_at) VALUES (?, ?, ?)",
		key, isOwner, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("registering archive %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRegistry) GetArchive(key string) (*ArchiveRecord, error) {
	row := r.db.QueryRow("SELECT key, is_owner, created_at FROM archives WHERE key = ?", key)

	var rec ArchiveRecord
	if err := row.Scan(&rec.Key, &rec.IsOwner, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding archive %s: %w", key, err)
	}
	return &rec, nil
}

func (r *SQLiteRegistry) ListArchives() ([]*ArchiveRecord, error) {
	rows, err := r.db.Query("SELECT key, is_owner, created_at FROM archives ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}
	defer rows.Close()

	var out []*ArchiveRecord
	for rows.Next() {
		var rec ArchiveRecord
		if err := rows.Scan(&rec.Key, &rec.IsOwner, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archives: %w", err)
	}
	return out, nil
}

func (r *SQLiteRegistry) ForArchive(key string) ark.Store {
	return &sqliteArchiveLog{db: r.db, key: key}
}

func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

// sqliteArchiveLog is the per-archive view of the shared entries table.
type sqliteArchiveLog struct {
	db  *sql.DB
	key string
}

func (l *sqliteArchiveLog) AppendEntry(e ark.Entry) error {
	refs, err := json.Marshal(e.Refs)
	if err != nil {
		return fmt.Errorf("encoding refs: %w", err)
	}
	_, err = l.db.Exec(
		"INSERT INTO log_entries (archive_key, version, path, kind, node_type, refs, size, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		l.key, e.Version, e.Path, int(e.Kind), int(e.Type), string(refs), e.Size, e.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting entry %d: %w", e.Version, err)
	}
	return nil
}

func (l *sqliteArchiveLog) LoadEntries() ([]ark.Entry, error) {
	rows, err := l.db.Query(
		"SELECT version, path, kind, node_type, refs, size, at FROM log_entries WHERE archive_key = ? ORDER BY version",
		l.key,
	)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	defer rows.Close()

	var out []ark.Entry
	for rows.Next() {
		var (
			e       ark.Entry
			kind    int
			typ     int
			rawRefs string
		)
		if err := rows.Scan(&e.Version, &e.Path, &kind, &typ, &rawRefs, &e.Size, &e.At); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		e.Kind = ark.Kind(kind)
		e.Type = ark.NodeType(typ)
		if err := json.Unmarshal([]byte(rawRefs), &e.Refs); err != nil {
			return nil, fmt.Errorf("decoding refs for version %d: %w", e.Version, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return out, nil
}

// Compile-time check that SQLiteRegistry implements the Registry interface
var _ Registry = (*SQLiteRegistry)(nil)
