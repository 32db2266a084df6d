// Package session holds the process-wide authentication context: the access
// token and the selected workspace. One Session is created at start-up and
// passed explicitly to the request pipeline and the media sync pipeline.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/metadata"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type Session struct {
	mu          sync.RWMutex
	token       string
	workspaceID string
	meta        metadata.Repository
}

// New creates a Session. The workspace selection is persisted through meta;
// a nil meta keeps it in memory only.
func New(meta metadata.Repository) *Session {
	return &Session{meta: meta}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear forgets the access token. The workspace selection survives.
func (s *Session) Clear() {
	s.SetToken("")
}

// TokenExpiry reads the exp claim of the current token without verifying
// the signature. ok is false when there is no token or no exp claim.
func (s *Session) TokenExpiry() (exp time.Time, ok bool) {
	return TokenExpiry(s.Token())
}

// TokenExpiry reads the exp claim of token without verifying it.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// WorkspaceID returns the selected workspace, loading it from the metadata
// store on first use. "" means nothing is selected.
func (s *Session) WorkspaceID(ctx context.Context) (string, error) {
	s.mu.RLock()
	id := s.workspaceID
	s.mu.RUnlock()
	if id != "" || s.meta == nil {
		return id, nil
	}

	raw, err := s.meta.Get(ctx, common.WorkspaceMetadataKey)
	if err != nil {
		return "", fmt.Errorf("failed to load workspace selection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaceID == "" {
		s.workspaceID = string(raw)
	}
	return s.workspaceID, nil
}

// SetWorkspaceID selects a workspace and persists the choice.
func (s *Session) SetWorkspaceID(ctx context.Context, id string) error {
	s.mu.Lock()
	s.workspaceID = id
	s.mu.Unlock()

	if s.meta == nil {
		return nil
	}
	if err := s.meta.Set(ctx, common.WorkspaceMetadataKey, []byte(id)); err != nil {
		return fmt.Errorf("failed to persist workspace selection: %w", err)
	}
	return nil
}

// ClearWorkspace drops the selection from memory and from the store.
func (s *Session) ClearWorkspace(ctx context.Context) error {
	s.mu.Lock()
	s.workspaceID = ""
	s.mu.Unlock()

	if s.meta == nil {
		return nil
	}
	return s.meta.Delete(ctx, common.WorkspaceMetadataKey)
}
