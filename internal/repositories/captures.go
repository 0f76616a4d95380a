package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mkraev/starsync/internal/models"
	"github.com/mkraev/starsync/internal/shared"
)

// CaptureRepository implements models.Repository[*models.PersistedCapture]
// for the capture list cache.
//
// Entries are deduplicated on (artist, title, captured_at); re-reading the
// same capture file is a no-op.
type CaptureRepository struct {
	db *sql.DB
}

// NewCaptureRepository creates a new CaptureRepository with the given database connection
func NewCaptureRepository(db *sql.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

// Create inserts a new [models.PersistedCapture] with generated ID and sequence.
// Duplicate entries are silently ignored.
func (r *CaptureRepository) Create(capture *models.PersistedCapture) error {
	sequence, err := NextSequence(r.db, "captures")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	capture.SetID(shared.GenerateID())
	capture.SetSequence(sequence)

	if err := capture.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO captures (id, sequence, artist, title, captured_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		capture.ID(),
		capture.Sequence(),
		capture.Artist(),
		capture.Title(),
		capture.CapturedAt(),
		capture.CreatedAt(),
		capture.UpdatedAt(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to insert capture: %w", err)
	}

	return nil
}

// Get retrieves a cached capture by ID
func (r *CaptureRepository) Get(id string) (*models.PersistedCapture, error) {
	query := `
		SELECT id, sequence, artist, title, captured_at, created_at, updated_at
		FROM captures
		WHERE id = ?
	`
	capture, err := captureFields(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("capture not found")
	}
	return capture, err
}

// Update modifies an existing cached capture
func (r *CaptureRepository) Update(capture *models.PersistedCapture) error {
	if err := capture.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	capture.SetUpdatedAt(now)

	query := `
		UPDATE captures
		SET artist = ?, title = ?, captured_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, capture.Artist(), capture.Title(), capture.CapturedAt(), now, capture.ID())
	if err != nil {
		return fmt.Errorf("failed to update capture: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("capture not found: %s", capture.ID())
	}

	return nil
}

// Delete removes a cached capture by ID
func (r *CaptureRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM captures WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("capture not found: %s", id)
	}

	return nil
}

// List retrieves all cached captures, newest captures last
func (r *CaptureRepository) List(criteria map[string]any) ([]*models.PersistedCapture, error) {
	query := `
		SELECT id, sequence, artist, title, captured_at, created_at, updated_at
		FROM captures
	`

	args := []any{}
	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " WHERE artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY captured_at ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []*models.PersistedCapture
	for rows.Next() {
		capture, err := captureFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return captures, nil
}

// SyncFrom inserts every capture entry, relying on deduplication for reruns.
func (r *CaptureRepository) SyncFrom(captures []models.Capture) error {
	for _, c := range captures {
		if err := r.Create(models.NewPersistedCapture(0, c)); err != nil {
			return err
		}
	}
	return nil
}

// Captures returns the cached entries as plain [models.Capture] values.
func (r *CaptureRepository) Captures() ([]models.Capture, error) {
	persisted, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	captures := make([]models.Capture, len(persisted))
	for i, p := range persisted {
		captures[i] = p.Capture()
	}
	return captures, nil
}

func captureFields(scanner func(...any) error) (*models.PersistedCapture, error) {
	var (
		id         string
		sequence   int
		artist     string
		title      string
		capturedAt time.Time
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := scanner(&id, &sequence, &artist, &title, &capturedAt, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	capture := models.NewPersistedCapture(sequence, models.Capture{
		Artist:     artist,
		Title:      title,
		CapturedAt: capturedAt,
	})
	capture.SetID(id)
	capture.SetCreatedAt(createdAt)
	capture.SetUpdatedAt(updatedAt)

	return capture, nil
}
