package store

import (
	"database/sql"
	"fmt"
)

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, language, hash, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Files returns every cached file ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, language, hash, last_indexed FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ReplaceFile stores f and its exports, replacing whatever was cached for
// f.Path, in one transaction.
func (s *Store) ReplaceFile(f *File, exports []*Export) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM exports WHERE file_id IN (SELECT id FROM files WHERE path = ?)", f.Path,
	); err != nil {
		return fmt.Errorf("delete exports: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM files WHERE path = ?", f.Path); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	res, err := tx.Exec(
		"INSERT INTO files (path, language, hash, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, e := range exports {
		e.FileID = f.ID
		res, err := tx.Exec(
			"INSERT INTO exports (file_id, name, kind, line) VALUES (?, ?, ?, ?)",
			e.FileID, e.Name, e.Kind, e.Line,
		)
		if err != nil {
			return fmt.Errorf("insert export: %w", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) ExportsByFile(fileID int64) ([]*Export, error) {
	rows, err := s.db.Query(
		"SELECT id, file_id, name, kind, line FROM exports WHERE file_id = ? ORDER BY line, name", fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("exports by file: %w", err)
	}
	defer rows.Close()
	var exports []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.FileID, &e.Name, &e.Kind, &e.Line); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

// DeleteMissing removes cached files, and their exports, whose path is not
// in keep. It returns the number of files removed.
func (s *Store) DeleteMissing(keep []string) (int, error) {
	files, err := s.Files()
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(keep))
	for _, p := range keep {
		wanted[p] = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for _, f := range files {
		if wanted[f.Path] {
			continue
		}
		if _, err := tx.Exec("DELETE FROM exports WHERE file_id = ?", f.ID); err != nil {
			return 0, fmt.Errorf("delete exports: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM files WHERE id = ?", f.ID); err != nil {
			return 0, fmt.Errorf("delete file: %w", err)
		}
		removed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return removed, nil
}
