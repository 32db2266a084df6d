package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

// Do performs an authenticated, workspace-scoped call and decodes the
// response into out (which may be nil).
//
// On a 401 the access token is refreshed exactly once; when that works the
// new token is stored in the session and the call is repeated once with it.
// A failed refresh yields a *RequestError wrapping ErrSessionExpired. A 409
// with error VERSION_CONFLICT yields a *ConflictError.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	resp, err := c.scoped(ctx, method, path, token, payload)
	if err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}

	// A rejected token can surface from the workspace lookup as well as from
	// the call itself. Both take the same single refresh.
	if err != nil || resp.status == http.StatusUnauthorized {
		c.log.Info(ctx, "access token rejected, refreshing", "method", method, "path", path)

		refreshed, err := c.Refresh(ctx)
		if err != nil {
			c.log.Warn(ctx, "token refresh failed", "error", err)
			return sessionExpired(err)
		}
		c.session.SetToken(refreshed.Token)

		resp, err = c.scoped(ctx, method, path, refreshed.Token, payload)
		if err != nil {
			return err
		}
	}

	return editorDecoding.decode(resp, out)
}

// scoped resolves the workspace and sends one request with auth headers.
func (c *Client) scoped(ctx context.Context, method, path, token string, payload []byte) (response, error) {
	workspaceID, err := c.ResolveWorkspace(ctx, token)
	if err != nil {
		return response{}, err
	}

	return c.send(ctx, method, path, payload, map[string]string{
		common.AuthorizationHeaderName: bearer(token),
		common.WorkspaceHeaderName:     workspaceID,
	})
}

// ResolveWorkspace returns the selected workspace. With nothing selected it
// lists the caller's workspaces, selects the first and persists the choice.
func (c *Client) ResolveWorkspace(ctx context.Context, token string) (string, error) {
	id, err := c.session.WorkspaceID(ctx)
	if err != nil {
		c.log.Warn(ctx, "workspace selection unreadable", "error", err)
	}
	if id != "" {
		return id, nil
	}

	workspaces, err := c.Workspaces(ctx, token)
	if err != nil {
		return "", err
	}
	if len(workspaces) == 0 {
		return "", noWorkspace()
	}

	id = workspaces[0].ID
	if err := c.session.SetWorkspaceID(ctx, id); err != nil {
		c.log.Warn(ctx, "failed to persist workspace selection", "workspace_id", id, "error", err)
	}
	c.log.Info(ctx, "workspace selected", "workspace_id", id)
	return id, nil
}

// IsConflict reports whether err is a version conflict and returns it.
func IsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	ok := errors.As(err, &conflict)
	return conflict, ok
}
