package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	refreshCookie = "refresh_token"
	tokenValidity = 15 * time.Minute
)

// Claims are the access token claims issued by the fake.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// issueToken signs a new access token for userID and registers it. The
// caller holds s.mu.
func (s *Server) issueToken(userID string) string {
	s.seq++
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.Itoa(s.seq),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenValidity)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	s.tokens[signed] = userID
	return signed
}

// IssueToken returns a valid access token for the demo account without a
// login round trip.
func (s *Server) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(s.users[DemoUsername].user.ID)
}

// Expire revokes every access token. Refresh cookies stay valid.
func (s *Server) Expire() {
	s.mu.Lock()
	s.tokens = map[string]string{}
	s.mu.Unlock()
}

// userFromRequest validates the bearer token. The caller holds s.mu.
func (s *Server) userFromRequest(r *http.Request) (string, error) {
	raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), "Bearer ")
	if !ok || raw == "" {
		return "", common.ErrorUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	userID, ok := s.tokens[raw]
	if !ok || userID != claims.UserID {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

func (s *Server) userByID(id string) (models.BackendUser, bool) {
	for _, a := range s.users {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return models.BackendUser{}, false
}

// startSession issues an access token and sets the refresh cookie. The
// caller holds s.mu.
func (s *Server) startSession(w http.ResponseWriter, userID string) string {
	s.seq++
	rt := fmt.Sprintf("rt-%d", s.seq)
	s.refresh[rt] = userID
	http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: rt, Path: "/", HttpOnly: true})
	return s.issueToken(userID)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.users[req.Username]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := s.startSession(w, acc.user.ID)
	writeJSON(w, http.StatusOK, models.AuthResponse{Message: "Login successful", Token: token, User: acc.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	s.seq++
	user := models.BackendUser{
		ID:        fmt.Sprintf("user-%d", s.seq),
		Username:  req.Email,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
	}
	s.users[req.Email] = &account{password: req.Password, user: user}

	token := s.startSession(w, user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"data": models.AuthResponse{Message: "Registered", Token: token, User: user},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cookie, err := r.Cookie(refreshCookie)
	if err != nil || s.refreshDisabled {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	userID, ok := s.refresh[cookie.Value]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	user, _ := s.userByID(userID)

	writeJSON(w, http.StatusOK, map[string]any{
		"data": models.AuthResponse{Token: s.issueToken(userID), User: user},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(refreshCookie); err == nil {
		delete(s.refresh, cookie.Value)
	}
	if raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), "Bearer "); ok {
		delete(s.tokens, raw)
	}
	http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Logged out"})
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.userFromRequest(r); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.workspaces})
}

func (s *Server) handleOrganisation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.userFromRequest(r); err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": models.Organisation{
		ID:        DefaultWorkspace.OrganisationID,
		Name:      "Demo Org",
		CreatedAt: DefaultWorkspace.CreatedAt,
		UpdatedAt: DefaultWorkspace.UpdatedAt,
	}})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": len(s.users) > 0})
}

// requireWorkspace guards editor and file routes: a valid bearer token and
// a known x-workspace-id.
func (s *Server) requireWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		_, err := s.userFromRequest(r)
		known := false
		ws := r.Header.Get(common.WorkspaceHeaderName)
		for _, item := range s.workspaces {
			if item.ID == ws {
				known = true
			}
		}
		s.mu.Unlock()

		switch {
		case err != nil:
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		case ws == "":
			writeError(w, http.StatusBadRequest, "x-workspace-id header is required")
		case !known:
			writeError(w, http.StatusForbidden, "Workspace access denied")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
