package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/netx"
)

const (
	defaultProjectsLimit = 50
	defaultFilesLimit    = 100
)

type ListProjectsParams struct {
	Offset int
	Limit  int
	Search string
}

func (c *Client) ListProjects(ctx context.Context, p ListProjectsParams) (*models.ListEditorProjectsResponse, error) {
	if p.Limit <= 0 {
		p.Limit = defaultProjectsLimit
	}
	q := url.Values{}
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}

	var out models.ListEditorProjectsResponse
	if err := c.Do(ctx, http.MethodGet, "/editor/projects?"+q.Encode(), c.session.Token(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*models.GetEditorProjectResponse, error) {
	var out models.GetEditorProjectResponse
	if err := c.Do(ctx, http.MethodGet, "/editor/projects/"+url.PathEscape(projectID), c.session.Token(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutProject writes a project snapshot. The write is accepted only when
// req.BaseVersion matches the server's version; otherwise a *ConflictError
// is returned.
func (c *Client) PutProject(ctx context.Context, projectID string, req models.PutEditorProjectRequest) (*models.PutEditorProjectResponse, error) {
	if req.AssetFileIDs == nil {
		req.AssetFileIDs = []string{}
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid project payload: %w", err)
	}

	var out models.PutEditorProjectResponse
	if err := c.Do(ctx, http.MethodPut, "/editor/projects/"+url.PathEscape(projectID), c.session.Token(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.Do(ctx, http.MethodDelete, "/editor/projects/"+url.PathEscape(projectID), c.session.Token(), nil, nil)
}

// CreateFileUpload asks for an upload slot. The response carries the file
// record and a one-time presigned URL.
func (c *Client) CreateFileUpload(ctx context.Context, req models.CreateFileUploadRequest) (*models.CreateFileUploadResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid upload request: %w", err)
	}

	var out models.CreateFileUploadResponse
	if err := c.Do(ctx, http.MethodPost, "/files/upload", c.session.Token(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFiles(ctx context.Context, limit int, search string) (*models.ListFilesResponse, error) {
	if limit <= 0 {
		limit = defaultFilesLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}

	var out models.ListFilesResponse
	if err := c.Do(ctx, http.MethodGet, "/files?"+q.Encode(), c.session.Token(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignFileByKey returns a short-lived download URL for a stored key.
func (c *Client) SignFileByKey(ctx context.Context, key string, redirect bool) (*models.SignedFileResponse, error) {
	q := url.Values{}
	q.Set("key", key)
	q.Set("redirect", strconv.FormatBool(redirect))

	var out models.SignedFileResponse
	if err := c.Do(ctx, http.MethodGet, "/files/sign?"+q.Encode(), c.session.Token(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadToPresignedURL PUTs raw bytes to a capability URL. No auth headers
// are sent. Any non-2xx is a *RequestError.
func (c *Client) UploadToPresignedURL(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error {
	err := netx.UploadToPresignedURL(ctx, c.transfer, uploadURL, body, size, contentType)

	var upErr *netx.UploadError
	if errors.As(err, &upErr) {
		return &RequestError{
			StatusCode: upErr.StatusCode,
			Message:    fmt.Sprintf("File upload failed (%d)", upErr.StatusCode),
			Err:        err,
		}
	}
	return err
}
