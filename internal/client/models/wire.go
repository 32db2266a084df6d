package models

// EditorProjectState is the schema-versioned project snapshot sent to and
// received from the backend. Settings and Scenes are plain JSON data.
type EditorProjectState struct {
	SchemaVersion  int                 `json:"schemaVersion"`
	CurrentSceneID string              `json:"currentSceneId"`
	Metadata       EditorStateMetadata `json:"metadata"`
	Settings       map[string]any      `json:"settings"`
	Scenes         []map[string]any    `json:"scenes"`
}

type EditorStateMetadata struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	UpdatedAt string  `json:"updatedAt"`
}

type PutEditorProjectRequest struct {
	Name            string             `json:"name" validate:"required"`
	BaseVersion     int                `json:"baseVersion" validate:"gte=0"`
	State           EditorProjectState `json:"state"`
	AssetFileIDs    []string           `json:"assetFileIds" validate:"dive,required"`
	ClientRequestID string             `json:"clientRequestId,omitempty" validate:"omitempty,uuid"`
}

type PutEditorProjectResponse struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateFileUploadRequest struct {
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	Size        int64  `json:"size,omitempty" validate:"gte=0"`
}

// FileAsset is the backend record of an uploaded object.
type FileAsset struct {
	ID          string  `json:"id"`
	WorkspaceID string  `json:"workspaceId"`
	OwnerID     int64   `json:"ownerId"`
	Key         string  `json:"key"`
	Bucket      string  `json:"bucket"`
	Region      string  `json:"region"`
	FileName    string  `json:"fileName"`
	ContentType string  `json:"contentType"`
	Size        int64   `json:"size"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
	DeletedAt   *string `json:"deletedAt"`
}

type CreateFileUploadResponse struct {
	FileAsset
	UploadURL string `json:"uploadUrl"`
}

type ListFilesResponse struct {
	Items []FileAsset `json:"items"`
	Total int         `json:"total"`
}

type SignedFileResponse struct {
	URL string `json:"url"`
}

type EditorProjectListItem struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	OwnerID     int64  `json:"ownerId"`
	Name        string `json:"name"`
	Version     int    `json:"version"`
	UpdatedAt   string `json:"updatedAt"`
	CreatedAt   string `json:"createdAt"`
}

type ListEditorProjectsResponse struct {
	Items []EditorProjectListItem `json:"items"`
	Total int                     `json:"total"`
}

type GetEditorProjectResponse struct {
	ID          string             `json:"id"`
	WorkspaceID string             `json:"workspaceId"`
	OwnerID     int64              `json:"ownerId"`
	Name        string             `json:"name"`
	Version     int                `json:"version"`
	State       EditorProjectState `json:"state"`
	UpdatedAt   string             `json:"updatedAt"`
	CreatedAt   string             `json:"createdAt"`
}
