package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/timeline"
)

// BuildEditorProjectState produces the wire snapshot of p. Audio buffers are
// dropped and dates are written with FormatISO. Any value in settings or
// scenes without a plain-data form fails the whole build.
func BuildEditorProjectState(p models.Project) (models.EditorProjectState, error) {
	settings, err := toPlainObject(p.Settings)
	if err != nil {
		return models.EditorProjectState{}, fmt.Errorf("settings: %w", err)
	}

	scenes := make([]map[string]any, 0, len(p.Scenes))
	for i, scene := range StripAudioBuffers(p.Scenes) {
		obj, err := toPlainObject(scene)
		if err != nil {
			return models.EditorProjectState{}, fmt.Errorf("scene %d (%s): %w", i, scene.ID, err)
		}
		scenes = append(scenes, obj)
	}

	return models.EditorProjectState{
		SchemaVersion:  p.Version,
		CurrentSceneID: p.CurrentSceneID,
		Metadata: models.EditorStateMetadata{
			ID:        p.Metadata.ID,
			Name:      p.Metadata.Name,
			Duration:  p.Metadata.Duration,
			UpdatedAt: FormatISO(p.Metadata.UpdatedAt),
		},
		Settings: settings,
		Scenes:   scenes,
	}, nil
}

// StripAudioBuffers returns a copy of scenes in which no element of an audio
// track holds a decoded buffer.
func StripAudioBuffers(scenes []models.Scene) []models.Scene {
	out := make([]models.Scene, len(scenes))
	for i, scene := range scenes {
		tracks := make([]models.Track, len(scene.Tracks))
		for j, track := range scene.Tracks {
			if track.Type == models.TrackAudio {
				elements := make([]models.Element, len(track.Elements))
				for k, e := range track.Elements {
					e.Buffer = nil
					elements[k] = e
				}
				track.Elements = elements
			}
			tracks[j] = track
		}
		scene.Tracks = tracks
		out[i] = scene
	}
	return out
}

// ExtractAssetFileIDs returns the distinct media ids referenced by
// media-backed elements, in first-seen order.
func ExtractAssetFileIDs(p models.Project) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, scene := range p.Scenes {
		for _, track := range scene.Tracks {
			for _, e := range track.Elements {
				if !timeline.RequiresMediaID(e) || e.MediaID == "" {
					continue
				}
				if _, dup := seen[e.MediaID]; dup {
					continue
				}
				seen[e.MediaID] = struct{}{}
				ids = append(ids, e.MediaID)
			}
		}
	}
	return ids
}

// ExtractCloudAssetFileIDs returns the distinct cloud file ids of assets,
// skipping assets without one.
func ExtractCloudAssetFileIDs(assets []models.MediaAsset) []string {
	return cloudIDs(assets, func(models.MediaAsset) bool { return true })
}

// ExtractCloudAssetFileIDsForTimeline is ExtractCloudAssetFileIDs limited to
// assets the timeline of p actually uses.
func ExtractCloudAssetFileIDsForTimeline(p models.Project, assets []models.MediaAsset) []string {
	used := map[string]struct{}{}
	for _, id := range ExtractAssetFileIDs(p) {
		used[id] = struct{}{}
	}
	return cloudIDs(assets, func(a models.MediaAsset) bool {
		_, ok := used[a.ID]
		return ok
	})
}

func cloudIDs(assets []models.MediaAsset, keep func(models.MediaAsset) bool) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, a := range assets {
		id := a.CloudFileID()
		if id == "" || !keep(a) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// BuildLocalProjectFromCloudState rebuilds a Project from a snapshot.
// Scene dates that are missing or unparsable become the current time,
// missing bookmarks become empty and version is at least 1. createdAt and
// updatedAt are the server's record timestamps.
func BuildLocalProjectFromCloudState(projectID string, version int, state models.EditorProjectState, updatedAt, createdAt string) (models.Project, error) {
	now := time.Now().UTC()
	if projectID == "" {
		projectID = state.Metadata.ID
	}

	var settings models.Settings
	if state.Settings != nil {
		if err := remarshal(state.Settings, &settings); err != nil {
			return models.Project{}, fmt.Errorf("settings: %w", err)
		}
	}

	scenes := make([]models.Scene, 0, len(state.Scenes))
	for i, raw := range state.Scenes {
		scene, err := sceneFromState(raw, now)
		if err != nil {
			return models.Project{}, fmt.Errorf("scene %d: %w", i, err)
		}
		scenes = append(scenes, scene)
	}

	return models.Project{
		Metadata: models.ProjectMetadata{
			ID:        projectID,
			Name:      state.Metadata.Name,
			Duration:  state.Metadata.Duration,
			CreatedAt: ParseISO(createdAt, now),
			UpdatedAt: ParseISO(updatedAt, now),
		},
		CurrentSceneID: state.CurrentSceneID,
		Settings:       settings,
		Scenes:         scenes,
		Version:        max(1, version),
	}, nil
}

func sceneFromState(raw map[string]any, now time.Time) (models.Scene, error) {
	rest := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "createdAt" || k == "updatedAt" {
			continue
		}
		if _, isList := v.([]any); k == "bookmarks" && !isList {
			continue
		}
		rest[k] = v
	}

	var scene models.Scene
	if err := remarshal(rest, &scene); err != nil {
		return models.Scene{}, err
	}

	createdAt, _ := raw["createdAt"].(string)
	updatedAt, _ := raw["updatedAt"].(string)
	scene.CreatedAt = ParseISO(createdAt, now)
	scene.UpdatedAt = ParseISO(updatedAt, now)
	if scene.Bookmarks == nil {
		scene.Bookmarks = []float64{}
	}
	return scene, nil
}

// ParseISO parses an RFC 3339 timestamp, returning fallback when s is empty
// or malformed.
func ParseISO(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

// remarshal decodes plain data into a typed value.
func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
