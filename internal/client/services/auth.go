// Package services contains the application services of the vibecut client.
// This file defines the authentication service: session bootstrap from the
// refresh cookie, login, registration, logout and workspace selection.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
)

// AuthStatus is the state of the signed-in user.
type AuthStatus string

const (
	StatusIdle            AuthStatus = "idle"
	StatusLoading         AuthStatus = "loading"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusUnauthenticated AuthStatus = "unauthenticated"
)

// ErrUnknownWorkspace is returned when selecting a workspace the account
// cannot see.
var ErrUnknownWorkspace = fmt.Errorf("workspace %w", common.ErrorNotFound)

// AuthAPI is the part of the API client used by AuthService.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Workspaces(ctx context.Context, token string) ([]models.Workspace, error)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Initialize: restore the session from the refresh cookie, at most once.
//   - Login, Register: authenticate and store the access token.
//   - Logout: always clears local state, even if the backend call fails.
//   - Workspaces, SelectWorkspace: list and choose the editor scope.
//
// Login and Register record the failure message in LastError.
type AuthService interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context)
	Status() AuthStatus
	User() *models.BackendUser
	LastError() string
	ClearError()
	Workspaces(ctx context.Context) ([]models.Workspace, error)
	SelectWorkspace(ctx context.Context, id string) error
}

type authService struct {
	api  AuthAPI
	sess *session.Session
	log  logging.Logger

	mu          sync.RWMutex
	status      AuthStatus
	initialized bool
	user        *models.BackendUser
	lastError   string
}

// NewAuthService constructs an AuthService bound to the given API client and
// session.
func NewAuthService(a AuthAPI, sess *session.Session, log logging.Logger) AuthService {
	return &authService{api: a, sess: sess, log: log, status: StatusIdle}
}

func (s *authService) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized || s.status == StatusLoading {
		s.mu.Unlock()
		return
	}
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()

	resp, err := s.api.Refresh(ctx)
	if err != nil {
		s.log.Debug(ctx, "no session to restore", "error", err)
		s.signOut()
		return
	}
	s.signIn(resp)
}

func (s *authService) Login(ctx context.Context, username, password string) error {
	s.begin()

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.fail(err, "Login failed")
		return fmt.Errorf("login error: %w", err)
	}
	s.signIn(resp)
	s.log.Info(ctx, "logged in", "user_id", resp.User.ID)
	return nil
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	s.begin()

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.fail(err, "Registration failed")
		return fmt.Errorf("register error: %w", err)
	}
	s.signIn(resp)
	s.log.Info(ctx, "registered", "user_id", resp.User.ID)
	return nil
}

func (s *authService) Logout(ctx context.Context) {
	s.begin()

	if err := s.api.Logout(ctx, s.sess.Token()); err != nil {
		s.log.Warn(ctx, "backend logout failed", "error", err)
	}
	if err := s.sess.ClearWorkspace(ctx); err != nil {
		s.log.Warn(ctx, "failed to forget workspace", "error", err)
	}
	s.signOut()
}

func (s *authService) Status() AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *authService) User() *models.BackendUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *authService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *authService) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

func (s *authService) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	token := s.sess.Token()
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	return s.api.Workspaces(ctx, token)
}

// SelectWorkspace makes id the scope of editor calls. The id must be one of
// the account's workspaces.
func (s *authService) SelectWorkspace(ctx context.Context, id string) error {
	list, err := s.Workspaces(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(list, func(w models.Workspace) bool { return w.ID == id }) {
		return ErrUnknownWorkspace
	}
	return s.sess.SetWorkspaceID(ctx, id)
}

func (s *authService) begin() {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastError = ""
	s.mu.Unlock()
}

func (s *authService) signIn(resp *models.AuthResponse) {
	s.sess.SetToken(resp.Token)

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.status = StatusAuthenticated
	s.initialized = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *authService) signOut() {
	s.sess.Clear()

	s.mu.Lock()
	s.user = nil
	s.status = StatusUnauthenticated
	s.initialized = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *authService) fail(err error, fallback string) {
	s.signOut()

	s.mu.Lock()
	s.lastError = errorMessage(err, fallback)
	s.mu.Unlock()
}

// errorMessage is the user-facing text of err.
func errorMessage(err error, fallback string) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
