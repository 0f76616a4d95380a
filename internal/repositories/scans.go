package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
)

// ScanRepository implements models.Repository[*models.PersistedScan] for the
// local scan cache.
//
// Every completed scan replaces the cache wholesale: files deleted from disk
// must not linger as phantom matches.
type ScanRepository struct {
	db *sql.DB
}

// NewScanRepository creates a new ScanRepository with the given database connection
func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Create inserts a new [models.PersistedScan] with generated ID and sequence
func (r *ScanRepository) Create(scan *models.PersistedScan) error {
	sequence, err := NextSequence(r.db, "scanned_files")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	scan.SetID(shared.GenerateID())
	scan.SetSequence(sequence)

	if err := scan.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO scanned_files (id, sequence, artist, title, path, scanned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		scan.ID(),
		scan.Sequence(),
		scan.Artist(),
		scan.Title(),
		scan.Path(),
		scan.ScannedAt(),
		scan.CreatedAt(),
		scan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scanned file: %w", err)
	}

	return nil
}

// Get retrieves a cached scan entry by ID
func (r *ScanRepository) Get(id string) (*models.PersistedScan, error) {
	query := `
		SELECT id, sequence, artist, title, path, scanned_at, created_at, updated_at
		FROM scanned_files
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing cached scan entry
func (r *ScanRepository) Update(scan *models.PersistedScan) error {
	if err := scan.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	scan.SetUpdatedAt(now)

	query := `
		UPDATE scanned_files
		SET artist = ?, title = ?, path = ?, scanned_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, scan.Artist(), scan.Title(), scan.Path(), scan.ScannedAt(), now, scan.ID())
	if err != nil {
		return fmt.Errorf("failed to update scanned file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scanned file not found: %s", scan.ID())
	}

	return nil
}

// Delete removes a cached scan entry by ID
func (r *ScanRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM scanned_files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scanned file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scanned file not found: %s", id)
	}

	return nil
}

// List retrieves all cached scan entries matching the given criteria
func (r *ScanRepository) List(criteria map[string]any) ([]*models.PersistedScan, error) {
	query := `
		SELECT id, sequence, artist, title, path, scanned_at, created_at, updated_at
		FROM scanned_files
	`

	args := []any{}
	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " WHERE artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scanned files: %w", err)
	}
	defer rows.Close()

	var scans []*models.PersistedScan
	for rows.Next() {
		scan, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return scans, nil
}

// ReplaceAll wipes the cache and inserts the given files as one scan result.
func (r *ScanRepository) ReplaceAll(files []models.ScannedFile) error {
	if _, err := r.db.Exec("DELETE FROM scanned_files"); err != nil {
		return fmt.Errorf("failed to clear scan cache: %w", err)
	}

	for _, f := range files {
		if err := r.Create(models.NewPersistedScan(0, f)); err != nil {
			return err
		}
	}

	return nil
}

// Files returns the cached scan as plain [models.ScannedFile] values.
func (r *ScanRepository) Files() ([]models.ScannedFile, error) {
	scans, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	files := make([]models.ScannedFile, len(scans))
	for i, s := range scans {
		files[i] = s.File()
	}
	return files, nil
}

func (r *ScanRepository) scanOne(row *sql.Row) (*models.PersistedScan, error) {
	scan, err := scanFields(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scanned file not found")
	}
	return scan, err
}

func (r *ScanRepository) scanRow(rows *sql.Rows) (*models.PersistedScan, error) {
	return scanFields(rows.Scan)
}

func scanFields(scanner func(...any) error) (*models.PersistedScan, error) {
	var (
		id        string
		sequence  int
		artist    string
		title     string
		path      string
		scannedAt time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	err := scanner(&id, &sequence, &artist, &title, &path, &scannedAt, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	scan := models.NewPersistedScan(sequence, models.ScannedFile{
		Artist:    artist,
		Title:     title,
		Path:      path,
		ScannedAt: scannedAt,
	})
	scan.SetID(id)
	scan.SetCreatedAt(createdAt)
	scan.SetUpdatedAt(updatedAt)

	return scan, nil
}
