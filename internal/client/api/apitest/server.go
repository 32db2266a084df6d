// Package apitest runs an in-process fake of the vibecut backend for tests.
//
// The fake keeps users, workspaces, editor projects, file records and stored
// objects in memory. It enforces bearer auth, the workspace header and
// optimistic project versions the way the real backend does, and counts hits
// per route so tests can assert on network traffic.
package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Route names accepted by Hits and FailNext.
const (
	RouteLogin         = "login"
	RouteRegister      = "register"
	RouteRefresh       = "refresh"
	RouteLogout        = "logout"
	RouteWorkspaces    = "workspaces"
	RouteOrganisation  = "organisation"
	RouteInit          = "init"
	RouteListProjects  = "list-projects"
	RouteGetProject    = "get-project"
	RoutePutProject    = "put-project"
	RouteDeleteProject = "delete-project"
	RouteCreateUpload  = "create-upload"
	RouteListFiles     = "list-files"
	RouteSignFile      = "sign-file"
	RouteStoragePut    = "storage-put"
	RouteStorageGet    = "storage-get"
)

// Seeded account.
const (
	DemoUsername = "demo"
	DemoPassword = "password123"
)

// DefaultWorkspace is the only workspace of a fresh server.
var DefaultWorkspace = models.Workspace{
	ID:             "ws-1",
	OrganisationID: "org-1",
	Name:           "Default",
	CreatedAt:      "2026-01-01T00:00:00Z",
	UpdatedAt:      "2026-01-01T00:00:00Z",
}

type account struct {
	password string
	user     models.BackendUser
}

type injected struct {
	status int
	body   any
}

type Server struct {
	srv *httptest.Server

	mu              sync.Mutex
	secret          []byte
	seq             int
	users           map[string]*account
	tokens          map[string]string // access token -> user id
	refresh         map[string]string // refresh token -> user id
	workspaces      []models.Workspace
	projects        map[string]*storedProject
	files           []models.FileAsset
	objects         map[string][]byte
	puts            []models.PutEditorProjectRequest
	hits            map[string]int
	failures        map[string][]injected
	refreshDisabled bool
	uploadStatus    int
	omitFileID      bool
	requestLog      bytes.Buffer
}

// New starts a fake backend that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:     []byte("apitest-secret"),
		users:      map[string]*account{},
		tokens:     map[string]string{},
		refresh:    map[string]string{},
		workspaces: []models.Workspace{DefaultWorkspace},
		projects:   map[string]*storedProject{},
		objects:    map[string][]byte{},
		hits:       map[string]int{},
		failures:   map[string][]injected{},
	}
	s.users[DemoUsername] = &account{
		password: DemoPassword,
		user: models.BackendUser{
			ID:        "user-1",
			Username:  DemoUsername,
			Email:     "demo@example.com",
			Firstname: "Demo",
			Lastname:  "User",
			Role:      1,
		},
	}

	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.count)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/user/login", s.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	api.HandleFunc("/auth/user/register", s.handleRegister).Methods(http.MethodPost).Name(RouteRegister)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodGet).Name(RouteRefresh)
	api.HandleFunc("/auth/user/logout", s.handleLogout).Methods(http.MethodPost).Name(RouteLogout)
	api.HandleFunc("/auth/user/workspaces", s.handleWorkspaces).Methods(http.MethodGet).Name(RouteWorkspaces)
	api.HandleFunc("/auth/user/organisation", s.handleOrganisation).Methods(http.MethodGet).Name(RouteOrganisation)
	api.HandleFunc("/auth/user/init", s.handleInit).Methods(http.MethodGet).Name(RouteInit)

	scoped := api.NewRoute().Subrouter()
	scoped.Use(s.requireWorkspace)
	scoped.HandleFunc("/editor/projects", s.handleListProjects).Methods(http.MethodGet).Name(RouteListProjects)
	scoped.HandleFunc("/editor/projects/{id}", s.handleGetProject).Methods(http.MethodGet).Name(RouteGetProject)
	scoped.HandleFunc("/editor/projects/{id}", s.handlePutProject).Methods(http.MethodPut).Name(RoutePutProject)
	scoped.HandleFunc("/editor/projects/{id}", s.handleDeleteProject).Methods(http.MethodDelete).Name(RouteDeleteProject)
	scoped.HandleFunc("/files/upload", s.handleCreateUpload).Methods(http.MethodPost).Name(RouteCreateUpload)
	scoped.HandleFunc("/files", s.handleListFiles).Methods(http.MethodGet).Name(RouteListFiles)
	scoped.HandleFunc("/files/sign", s.handleSignFile).Methods(http.MethodGet).Name(RouteSignFile)

	r.HandleFunc("/storage/{key:.+}", s.handleStoragePut).Methods(http.MethodPut).Name(RouteStoragePut)
	r.HandleFunc("/storage/{key:.+}", s.handleStorageGet).Methods(http.MethodGet).Name(RouteStorageGet)

	return handlers.RecoveryHandler()(handlers.LoggingHandler(lockedWriter{s}, r))
}

// lockedWriter appends access log lines under the server lock.
type lockedWriter struct{ s *Server }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	return w.s.requestLog.Write(p)
}

// count records the hit and serves an injected failure when one is queued.
func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		s.mu.Lock()
		s.hits[name]++
		var fail *injected
		if queue := s.failures[name]; len(queue) > 0 {
			fail = &queue[0]
			s.failures[name] = queue[1:]
		}
		s.mu.Unlock()

		if fail != nil {
			writeJSON(w, fail.status, fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// URL is the server root, used for storage links.
func (s *Server) URL() string {
	return s.srv.URL
}

// BaseURL is the API root to configure clients with.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api"
}

// Hits returns how many requests matched route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests that matched any route.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

func (s *Server) ResetHits() {
	s.mu.Lock()
	s.hits = map[string]int{}
	s.mu.Unlock()
}

// FailNext makes the next request to route answer status with body instead
// of reaching its handler. Calls queue up.
func (s *Server) FailNext(route string, status int, body any) {
	s.mu.Lock()
	s.failures[route] = append(s.failures[route], injected{status: status, body: body})
	s.mu.Unlock()
}

func (s *Server) SetWorkspaces(ws ...models.Workspace) {
	s.mu.Lock()
	s.workspaces = append([]models.Workspace(nil), ws...)
	s.mu.Unlock()
}

// SetRefreshDisabled makes every refresh fail with 401.
func (s *Server) SetRefreshDisabled(disabled bool) {
	s.mu.Lock()
	s.refreshDisabled = disabled
	s.mu.Unlock()
}

// SetUploadStatus forces presigned PUTs to answer status. Zero restores
// normal behaviour.
func (s *Server) SetUploadStatus(status int) {
	s.mu.Lock()
	s.uploadStatus = status
	s.mu.Unlock()
}

// SetOmitFileID drops the file id from upload slot responses, leaving only
// the storage key.
func (s *Server) SetOmitFileID(omit bool) {
	s.mu.Lock()
	s.omitFileID = omit
	s.mu.Unlock()
}

// RequestLog returns the access log in Apache common log format.
func (s *Server) RequestLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Split(strings.TrimSpace(s.requestLog.String()), "\n")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":     "error",
		"message":    message,
		"statusCode": status,
	})
}
