package media

import (
	"context"
	"io"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

// Cloud is the part of the API client used by the sync pipeline.
type Cloud interface {
	CreateFileUpload(ctx context.Context, req models.CreateFileUploadRequest) (*models.CreateFileUploadResponse, error)
	UploadToPresignedURL(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error
	ListFiles(ctx context.Context, limit int, search string) (*models.ListFilesResponse, error)
}

// TokenSource reports the current access token; "" means signed out.
type TokenSource interface {
	Token() string
}

// ElementRef points at one element of a track.
type ElementRef struct {
	TrackID   string
	ElementID string
}

// Editor is the owner of the active project's timeline.
type Editor interface {
	MarkDirty()
	Tracks() []models.Track
	DeleteElements(refs []ElementRef)
}

// TransferWrapper may wrap the body of an upload, e.g. to report progress.
type TransferWrapper func(asset models.MediaAsset, body io.Reader, size int64) io.Reader
