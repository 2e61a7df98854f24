// Package storage persists scan results in SQLite so list and clean can
// operate on the most recent scan.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Parth7487/imagedup/internal/analyze"
	"github.com/Parth7487/imagedup/internal/models"
)

// Storage handles persistence of scan results and duplicate groups.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage opens (and if needed creates) the database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// init creates the database schema.
func (s *Storage) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		directory TEXT NOT NULL,
		scanned_at DATETIME NOT NULL,
		total_images INTEGER NOT NULL,
		total_groups INTEGER NOT NULL,
		total_duplicates INTEGER NOT NULL,
		total_wasted INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		strategy TEXT NOT NULL,
		digest TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS group_files (
		group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		mod_time DATETIME NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		format TEXT NOT NULL DEFAULT '',
		has_exif INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_groups_scan_id ON groups(scan_id);
	CREATE INDEX IF NOT EXISTS idx_group_files_group_id ON group_files(group_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveResult stores a complete scan result, replacing nothing: every scan is
// a new row so scan history is preserved.
func (s *Storage) SaveResult(result *models.ScanResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO scans (directory, scanned_at, total_images, total_groups, total_duplicates, total_wasted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.Directory, result.ScannedAt.Format(time.RFC3339), result.TotalImages,
		result.Analysis.TotalGroups, result.Analysis.TotalDuplicates, result.Analysis.TotalWasted)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get scan id: %w", err)
	}

	groupStmt, err := tx.Prepare(`INSERT INTO groups (scan_id, label, strategy, digest) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer groupStmt.Close()

	fileStmt, err := tx.Prepare(`
		INSERT INTO group_files (group_id, position, path, file_size, mod_time, width, height, format, has_exif)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer fileStmt.Close()

	for _, group := range result.Groups {
		res, err := groupStmt.Exec(scanID, group.Label, group.Strategy, group.Digest)
		if err != nil {
			return fmt.Errorf("failed to insert group %s: %w", group.Label, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get group id: %w", err)
		}

		for pos, img := range group.Images {
			_, err := fileStmt.Exec(groupID, pos, img.Path, img.FileSize, img.ModTime.Format(time.RFC3339),
				img.Width, img.Height, img.Format, img.HasExif)
			if err != nil {
				return fmt.Errorf("failed to insert file %s: %w", img.Path, err)
			}
		}
	}

	return tx.Commit()
}

// LatestResult loads the most recent scan with its groups and recomputed
// recommendations. Returns nil when no scan has been stored yet.
func (s *Storage) LatestResult() (*models.ScanResult, error) {
	var (
		scanID    int64
		scannedAt string
		result    = &models.ScanResult{}
	)
	err := s.db.QueryRow(`
		SELECT id, directory, scanned_at, total_images
		FROM scans ORDER BY id DESC LIMIT 1
	`).Scan(&scanID, &result.Directory, &scannedAt, &result.TotalImages)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	result.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)

	groups, err := s.loadGroups(scanID)
	if err != nil {
		return nil, err
	}
	result.Groups = groups
	result.Analysis = analyze.Groups(groups)

	return result, nil
}

func (s *Storage) loadGroups(scanID int64) ([]*models.DuplicateGroup, error) {
	rows, err := s.db.Query(`
		SELECT id, label, strategy, digest FROM groups
		WHERE scan_id = ? ORDER BY id
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.DuplicateGroup
	var ids []int64
	for rows.Next() {
		var id int64
		group := &models.DuplicateGroup{}
		if err := rows.Scan(&id, &group.Label, &group.Strategy, &group.Digest); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		groups = append(groups, group)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	for i, id := range ids {
		images, err := s.loadGroupFiles(id)
		if err != nil {
			return nil, err
		}
		groups[i].Images = images
	}

	return groups, nil
}

func (s *Storage) loadGroupFiles(groupID int64) ([]*models.ImageInfo, error) {
	rows, err := s.db.Query(`
		SELECT path, file_size, mod_time, width, height, format, has_exif FROM group_files
		WHERE group_id = ? ORDER BY position
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group files: %w", err)
	}
	defer rows.Close()

	var images []*models.ImageInfo
	for rows.Next() {
		img := &models.ImageInfo{}
		var modTime string
		if err := rows.Scan(&img.Path, &img.FileSize, &modTime,
			&img.Width, &img.Height, &img.Format, &img.HasExif); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		img.ModTime, _ = time.Parse(time.RFC3339, modTime)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group files: %w", err)
	}

	return images, nil
}

// ScanRecord summarizes one stored scan.
type ScanRecord struct {
	Directory       string
	ScannedAt       time.Time
	TotalImages     int
	TotalGroups     int
	TotalDuplicates int
	TotalWasted     int64
}

// History returns stored scans, newest first.
func (s *Storage) History(limit int) ([]*ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT directory, scanned_at, total_images, total_groups, total_duplicates, total_wasted
		FROM scans ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []*ScanRecord
	for rows.Next() {
		rec := &ScanRecord{}
		var scannedAt string
		if err := rows.Scan(&rec.Directory, &scannedAt, &rec.TotalImages,
			&rec.TotalGroups, &rec.TotalDuplicates, &rec.TotalWasted); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scan history: %w", err)
	}

	return records, nil
}
