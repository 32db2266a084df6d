package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

// Login exchanges credentials for an access token. The refresh cookie set by
// the backend is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	var out models.AuthResponse
	if err := c.authRequest(ctx, http.MethodPost, "/auth/user/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if req.Role == 0 {
		req.Role = 1
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	var out models.AuthResponse
	if err := c.authRequest(ctx, http.MethodPost, "/auth/user/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades the refresh cookie for a new access token.
func (c *Client) Refresh(ctx context.Context) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.authRequest(ctx, http.MethodGet, "/auth/refresh", "", nil, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &RequestError{StatusCode: http.StatusUnauthorized, Message: "Refresh returned no token"}
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.authRequest(ctx, http.MethodPost, "/auth/user/logout", token, nil, nil)
}

func (c *Client) Workspaces(ctx context.Context, token string) ([]models.Workspace, error) {
	var out []models.Workspace
	if err := c.authRequest(ctx, http.MethodGet, "/auth/user/workspaces", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Organisation(ctx context.Context, token string) (*models.Organisation, error) {
	var out models.Organisation
	if err := c.authRequest(ctx, http.MethodGet, "/auth/user/organisation", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserInit reports whether the backend already has at least one user.
func (c *Client) UserInit(ctx context.Context) (bool, error) {
	var out bool
	if err := c.authRequest(ctx, http.MethodGet, "/auth/user/init", "", nil, &out); err != nil {
		return false, err
	}
	return out, nil
}
