package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the scan cache.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track is an artist/title pair from any source.
type Track struct {
	Artist string
	Title  string
}

// ScannedFile is a local audio file with its parsed tags.
type ScannedFile struct {
	Artist    string
	Title     string
	Path      string
	ScannedAt time.Time
}

// Capture is one entry from the user's capture list.
type Capture struct {
	Artist     string
	Title      string
	CapturedAt time.Time
}

// RemoteEntry is a matching entry discovered on the catalogue site.
type RemoteEntry struct {
	URL   string
	ID    string
	Title string // exact display title on the catalogue, may differ from local tags
}
