package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type storedProject struct {
	models.GetEditorProjectResponse
	AssetFileIDs []string
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

// SeedProject stores a project as if another client had written it.
func (s *Server) SeedProject(p models.GetEditorProjectResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.WorkspaceID == "" {
		p.WorkspaceID = DefaultWorkspace.ID
	}
	s.projects[p.ID] = &storedProject{GetEditorProjectResponse: p}
}

// Project returns the stored copy of a project.
func (s *Server) Project(id string) (models.GetEditorProjectResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return models.GetEditorProjectResponse{}, false
	}
	return p.GetEditorProjectResponse, true
}

// LastPut returns the body of the most recent accepted or rejected PUT.
func (s *Server) LastPut() (models.PutEditorProjectRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.puts) == 0 {
		return models.PutEditorProjectRequest{}, false
	}
	return s.puts[len(s.puts)-1], true
}

// Object returns bytes stored through a presigned PUT.
func (s *Server) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

// Files returns every file record in creation order.
func (s *Server) Files() []models.FileAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FileAsset(nil), s.files...)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ws := r.Header.Get(common.WorkspaceHeaderName)
	offset := max(queryInt(r, "offset", 0), 0)
	limit := queryInt(r, "limit", 50)
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	items := []models.EditorProjectListItem{}
	for _, p := range s.projects {
		if p.WorkspaceID != ws || !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		items = append(items, models.EditorProjectListItem{
			ID:          p.ID,
			WorkspaceID: p.WorkspaceID,
			OwnerID:     p.OwnerID,
			Name:        p.Name,
			Version:     p.Version,
			UpdatedAt:   p.UpdatedAt,
			CreatedAt:   p.CreatedAt,
		})
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt != items[j].UpdatedAt {
			return items[i].UpdatedAt > items[j].UpdatedAt
		}
		return items[i].ID < items[j].ID
	})

	total := len(items)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)
	writeJSON(w, http.StatusOK, models.ListEditorProjectsResponse{Items: items[offset:end], Total: total})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := r.Header.Get(common.WorkspaceHeaderName)

	s.mu.Lock()
	p, ok := s.projects[id]
	s.mu.Unlock()

	if !ok || p.WorkspaceID != ws {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p.GetEditorProjectResponse)
}

// handlePutProject creates a project at version 1 or updates it to
// version+1 when baseVersion matches.
func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := r.Header.Get(common.WorkspaceHeaderName)

	var req models.PutEditorProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, req)

	ts := now()
	p, exists := s.projects[id]
	if !exists {
		p = &storedProject{GetEditorProjectResponse: models.GetEditorProjectResponse{
			ID:          id,
			WorkspaceID: ws,
			OwnerID:     1,
			CreatedAt:   ts,
		}}
		s.projects[id] = p
	} else if p.Version != req.BaseVersion {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":           "VERSION_CONFLICT",
			"message":         "Project has a newer version on server",
			"serverVersion":   p.Version,
			"serverUpdatedAt": p.UpdatedAt,
			"statusCode":      http.StatusConflict,
		})
		return
	}

	p.Name = req.Name
	p.State = req.State
	p.AssetFileIDs = append([]string(nil), req.AssetFileIDs...)
	p.Version++
	p.UpdatedAt = ts

	writeJSON(w, http.StatusOK, models.PutEditorProjectResponse{ID: p.ID, Version: p.Version, UpdatedAt: p.UpdatedAt})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	_, ok := s.projects[id]
	delete(s.projects, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	ws := r.Header.Get(common.WorkspaceHeaderName)

	var req models.CreateFileUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileName == "" {
		writeError(w, http.StatusBadRequest, "fileName is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asset := models.FileAsset{
		ID:          uuid.NewString(),
		WorkspaceID: ws,
		OwnerID:     1,
		Key:         fmt.Sprintf("media/%s/%s", ws, req.FileName),
		Bucket:      "vibecut-test",
		Region:      "us-east-1",
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		CreatedAt:   now(),
	}
	s.files = append(s.files, asset)

	resp := models.CreateFileUploadResponse{FileAsset: asset, UploadURL: s.srv.URL + "/storage/" + asset.Key}
	if s.omitFileID {
		resp.ID = ""
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	ws := r.Header.Get(common.WorkspaceHeaderName)
	limit := queryInt(r, "limit", 100)
	search := r.URL.Query().Get("search")

	s.mu.Lock()
	items := []models.FileAsset{}
	for _, f := range s.files {
		if f.WorkspaceID == ws && strings.Contains(f.FileName, search) {
			items = append(items, f)
		}
	}
	s.mu.Unlock()

	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, models.ListFilesResponse{Items: items, Total: total})
}

func (s *Server) handleSignFile(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	writeJSON(w, http.StatusOK, models.SignedFileResponse{
		URL: s.srv.URL + "/storage/" + key + "?expires=" + strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})
}

func (s *Server) handleStoragePut(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	s.mu.Lock()
	status := s.uploadStatus
	s.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if r.Header.Get(common.AuthorizationHeaderName) != "" {
		http.Error(w, "presigned uploads must not carry credentials", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStorageGet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", common.DefaultContentType)
	_, _ = w.Write(data)
}
