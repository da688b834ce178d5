package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is kept in PRAGMA user_version. A cache written under any
// other version is dropped and rebuilt by Open.
const schemaVersion = 1

// Store is the SQLite plan cache: one row per discovered file and one per
// export found in it. Everything in it can be rebuilt from the sources, so
// it is discarded rather than migrated when the schema changes.
type Store struct {
	db *sql.DB
}

// Open opens the cache at dbPath and brings its schema up to date. The
// parent directory must exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache %s: %w", dbPath, err)
	}
	s := &Store{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the cache.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) prepare() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read cache version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(dropDDL); err != nil {
		return fmt.Errorf("drop cache v%d: %w", version, err)
	}
	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set cache version: %w", err)
	}
	return tx.Commit()
}

// Lookup returns the cached exports of path if the file was cached with
// content hash hash. ok is false on a miss or when the file has changed.
func (s *Store) Lookup(path, hash string) (exports []*Export, ok bool, err error) {
	f, err := s.FileByPath(path)
	if err != nil || f == nil || f.Hash != hash {
		return nil, false, err
	}
	exports, err = s.ExportsByFile(f.ID)
	if err != nil {
		return nil, false, err
	}
	return exports, true, nil
}

const dropDDL = `
DROP TABLE IF EXISTS exports;
DROP TABLE IF EXISTS files;
`

const schemaDDL = `
CREATE TABLE files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT,
  last_indexed    TIMESTAMP
);

CREATE TABLE exports (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id),
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  line            INTEGER
);

CREATE INDEX idx_exports_file ON exports(file_id);
CREATE INDEX idx_exports_name ON exports(name);
`
