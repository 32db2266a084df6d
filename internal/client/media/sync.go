package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

const (
	defaultContentType = "application/octet-stream"
	recoveryListLimit  = 100
)

// UploadFileName is the cloud file name of a project's asset.
func UploadFileName(projectID, mediaID, name string) string {
	return fmt.Sprintf("%s__%s__%s", projectID, mediaID, name)
}

// SyncMediaAssetToCloud uploads one asset and records its cloud file. It is
// a no-op when signed out, when the asset is gone or when it is already
// synced. Concurrent calls for the same id share one upload. Failures are
// logged, never returned.
func (m *Manager) SyncMediaAssetToCloud(ctx context.Context, projectID, mediaID string) {
	if m.tokens.Token() == "" {
		return
	}

	_, _, _ = m.inflight.Do(mediaID, func() (any, error) {
		m.syncOnce(ctx, projectID, mediaID)
		return nil, nil
	})
}

func (m *Manager) syncOnce(ctx context.Context, projectID, mediaID string) {
	m.mu.Lock()
	i := m.indexOf(mediaID)
	if i < 0 || m.assets[i].IsSynced() {
		m.mu.Unlock()
		return
	}
	asset := m.assets[i]
	if twin, ok := m.syncedTwin(asset); ok {
		m.mu.Unlock()
		m.log.Info(ctx, "linking media asset to existing cloud file", "media_id", mediaID, "twin_id", twin.ID)
		m.commit(ctx, projectID, mediaID, models.Synced{
			CloudFileID:  twin.CloudFileID(),
			CloudFileKey: twin.CloudFileKey(),
			SyncedAt:     time.Now().UTC(),
		})
		return
	}
	m.assets[i].Sync = models.Uploading{}
	m.mu.Unlock()
	m.notify()

	state, err := m.upload(ctx, projectID, asset)
	if err != nil {
		m.log.Warn(ctx, "failed to sync media asset to cloud", "project_id", projectID, "media_id", mediaID, "error", err)
		m.mu.Lock()
		if i := m.indexOf(mediaID); i >= 0 {
			m.assets[i].Sync = models.LocalOnly{}
		}
		m.mu.Unlock()
		m.notify()
		return
	}

	m.commit(ctx, projectID, mediaID, state)
}

// syncedTwin finds another synced asset with the same content. m.mu must be
// held.
func (m *Manager) syncedTwin(a models.MediaAsset) (models.MediaAsset, bool) {
	if a.ContentHash == "" {
		return models.MediaAsset{}, false
	}
	for _, other := range m.assets {
		if other.ID != a.ID && other.ContentHash == a.ContentHash && other.IsSynced() {
			return other, true
		}
	}
	return models.MediaAsset{}, false
}

func (m *Manager) upload(ctx context.Context, projectID string, asset models.MediaAsset) (models.Synced, error) {
	fileName := UploadFileName(projectID, asset.ID, asset.Name)
	contentType := asset.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	size := int64(len(asset.Data))

	slot, err := m.cloud.CreateFileUpload(ctx, models.CreateFileUploadRequest{
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		return models.Synced{}, fmt.Errorf("failed to create upload: %w", err)
	}

	var body io.Reader = bytes.NewReader(asset.Data)
	if m.wrap != nil {
		body = m.wrap(asset, body, size)
	}
	if err := m.cloud.UploadToPresignedURL(ctx, slot.UploadURL, body, size, contentType); err != nil {
		return models.Synced{}, err
	}

	id := slot.ID
	if id == "" {
		id, err = m.recoverFileID(ctx, fileName, slot.Key)
		if err != nil {
			return models.Synced{}, err
		}
	}

	return models.Synced{
		CloudFileID:  id,
		CloudFileKey: slot.Key,
		SyncedAt:     time.Now().UTC(),
	}, nil
}

// recoverFileID looks the uploaded file up by name when the upload slot came
// back without an id. No match leaves the id empty; the key alone still
// marks the asset synced.
func (m *Manager) recoverFileID(ctx context.Context, fileName, key string) (string, error) {
	files, err := m.cloud.ListFiles(ctx, recoveryListLimit, fileName)
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files.Items {
		if f.Key == key {
			return f.ID, nil
		}
	}
	return "", nil
}

// commit stores state on the asset if it is still in the collection.
func (m *Manager) commit(ctx context.Context, projectID, mediaID string, state models.Synced) {
	m.mu.Lock()
	i := m.indexOf(mediaID)
	if i < 0 {
		m.mu.Unlock()
		m.log.Info(ctx, "media asset removed during sync", "media_id", mediaID)
		return
	}
	m.assets[i].Sync = state
	synced := m.assets[i]
	editor := m.editor
	m.mu.Unlock()

	m.notify()
	if editor != nil {
		editor.MarkDirty()
	}

	if err := m.repo.Save(ctx, projectID, synced); err != nil {
		m.log.Warn(ctx, "failed to persist synced media asset", "project_id", projectID, "media_id", mediaID, "error", err)
	}
}
