package models

import (
	"encoding/json"
	"time"
)

// MediaType is the broad kind of an imported file.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
)

// SyncState is the cloud linkage of a media asset. The set of states is
// closed: LocalOnly, Uploading and Synced.
type SyncState interface {
	syncState()
}

// LocalOnly: the asset exists only on this device.
type LocalOnly struct{}

// Uploading: a transfer is in flight. Never persisted.
type Uploading struct{}

// Synced: the asset has a cloud file record.
type Synced struct {
	CloudFileID  string
	CloudFileKey string
	SyncedAt     time.Time
}

func (LocalOnly) syncState() {}
func (Uploading) syncState() {}
func (Synced) syncState()    {}

// MediaAsset is an imported file belonging to a project.
type MediaAsset struct {
	ID           string
	Name         string
	Type         MediaType
	ContentType  string
	Size         int64
	Data         []byte
	ContentHash  string
	URL          string
	ThumbnailURL string
	Width        int
	Height       int
	Duration     float64
	Sync         SyncState
}

// IsSynced reports whether the asset already carries a cloud file id or key.
func (a MediaAsset) IsSynced() bool {
	s, ok := a.Sync.(Synced)
	return ok && (s.CloudFileID != "" || s.CloudFileKey != "")
}

// CloudFileID returns the cloud file id, or "" when not synced.
func (a MediaAsset) CloudFileID() string {
	if s, ok := a.Sync.(Synced); ok {
		return s.CloudFileID
	}
	return ""
}

// CloudFileKey returns the storage key, or "" when not synced.
func (a MediaAsset) CloudFileKey() string {
	if s, ok := a.Sync.(Synced); ok {
		return s.CloudFileKey
	}
	return ""
}

// SyncLabel is a short human-readable name of the sync state.
func (a MediaAsset) SyncLabel() string {
	switch a.Sync.(type) {
	case Uploading:
		return "uploading"
	case Synced:
		return "synced"
	default:
		return "local-only"
	}
}

type mediaAssetJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          MediaType  `json:"type"`
	ContentType   string     `json:"contentType,omitempty"`
	Size          int64      `json:"size"`
	Data          []byte     `json:"data,omitempty"`
	ContentHash   string     `json:"contentHash,omitempty"`
	Width         int        `json:"width,omitempty"`
	Height        int        `json:"height,omitempty"`
	Duration      float64    `json:"duration,omitempty"`
	CloudFileID   string     `json:"cloudFileId,omitempty"`
	CloudFileKey  string     `json:"cloudFileKey,omitempty"`
	CloudSyncedAt *time.Time `json:"cloudSyncedAt,omitempty"`
}

// MarshalJSON writes the persisted form. Preview URLs are process-local and
// are dropped; an Uploading asset is stored as local-only.
func (a MediaAsset) MarshalJSON() ([]byte, error) {
	out := mediaAssetJSON{
		ID:          a.ID,
		Name:        a.Name,
		Type:        a.Type,
		ContentType: a.ContentType,
		Size:        a.Size,
		Data:        a.Data,
		ContentHash: a.ContentHash,
		Width:       a.Width,
		Height:      a.Height,
		Duration:    a.Duration,
	}
	if s, ok := a.Sync.(Synced); ok {
		out.CloudFileID = s.CloudFileID
		out.CloudFileKey = s.CloudFileKey
		if !s.SyncedAt.IsZero() {
			at := s.SyncedAt.UTC()
			out.CloudSyncedAt = &at
		}
	}
	return json.Marshal(out)
}

func (a *MediaAsset) UnmarshalJSON(data []byte) error {
	var in mediaAssetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*a = MediaAsset{
		ID:          in.ID,
		Name:        in.Name,
		Type:        in.Type,
		ContentType: in.ContentType,
		Size:        in.Size,
		Data:        in.Data,
		ContentHash: in.ContentHash,
		Width:       in.Width,
		Height:      in.Height,
		Duration:    in.Duration,
		Sync:        LocalOnly{},
	}
	if in.CloudFileID != "" || in.CloudFileKey != "" {
		s := Synced{CloudFileID: in.CloudFileID, CloudFileKey: in.CloudFileKey}
		if in.CloudSyncedAt != nil {
			s.SyncedAt = *in.CloudSyncedAt
		}
		a.Sync = s
	}
	return nil
}
