package media

import (
	"context"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

type Repository interface {
	// Save inserts or replaces a.
	Save(ctx context.Context, projectID string, a models.MediaAsset) error

	// Get returns the asset or common.ErrorNotFound.
	Get(ctx context.Context, projectID, id string) (*models.MediaAsset, error)

	// List returns the assets of a project ordered by name, then id.
	List(ctx context.Context, projectID string) ([]models.MediaAsset, error)

	Delete(ctx context.Context, projectID, id string) error

	// Clear removes every asset of a project.
	Clear(ctx context.Context, projectID string) error

	// ClearAll removes the assets of every project.
	ClearAll(ctx context.Context) error
}
