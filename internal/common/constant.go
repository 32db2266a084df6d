// Package common contains shared constants and sentinel errors used across
// the vibecut sync client.
package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// WorkspaceHeaderName scopes every authenticated editor call to one workspace.
	// The backend rejects editor requests without it with HTTP 400.
	WorkspaceHeaderName = "x-workspace-id"

	// DefaultContentType is used for media payloads whose type is unknown.
	DefaultContentType = "application/octet-stream"

	// WorkspaceMetadataKey is the metadata key holding the selected workspace id.
	WorkspaceMetadataKey = "opencut_workspace_id"
)
