package projects

import (
	"context"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

// Record is a raw persisted project document of any schema version.
type Record = map[string]any

type Repository interface {
	// Get returns the project with id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Project, error)

	// Save inserts or replaces p under p.Metadata.ID.
	Save(ctx context.Context, p *models.Project) error

	// List returns every project, most recently updated first.
	List(ctx context.Context) ([]models.Project, error)

	Delete(ctx context.Context, id string) error

	// Records returns every raw document ordered by key.
	Records(ctx context.Context) ([]Record, error)

	// PutRecord stores a raw document under id.
	PutRecord(ctx context.Context, id string, rec Record) error
}
