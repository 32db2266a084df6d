package migrator

import (
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/mapper"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/google/uuid"
)

// CurrentVersion is the schema version written by this client.
const CurrentVersion = 2

// Builtin returns the migrations from schema 0 up to CurrentVersion.
func Builtin() []Migration {
	return []Migration{
		{From: 0, To: 1, Name: "flat-tracks-to-scenes", Transform: V0ToV1},
		{From: 1, To: 2, Name: "hoist-metadata-and-settings", Transform: V1ToV2},
	}
}

// Settings defaults for records that predate project settings.
const (
	defaultFPS        = 30
	defaultWidth      = 1920
	defaultHeight     = 1080
	defaultBackground = "#000000"
)

// V0ToV1 moves the flat tracks and bookmarks of a schema 0 record into a
// single main scene.
func V0ToV1(rec projects.Record) (projects.Record, bool, error) {
	if scenes, ok := rec["scenes"].([]any); ok && len(scenes) > 0 {
		return nil, true, nil
	}

	out := clone(rec)
	now := mapper.FormatISO(time.Now())

	tracks, _ := out["tracks"].([]any)
	if tracks == nil {
		tracks = []any{}
	}
	bookmarks, _ := out["bookmarks"].([]any)
	if bookmarks == nil {
		bookmarks = []any{}
	}

	scene := map[string]any{
		"id":        uuid.NewString(),
		"name":      "Main scene",
		"isMain":    true,
		"tracks":    tracks,
		"bookmarks": bookmarks,
		"createdAt": stringOr(out["createdAt"], now),
		"updatedAt": stringOr(out["updatedAt"], now),
	}

	delete(out, "tracks")
	delete(out, "bookmarks")
	out["scenes"] = []any{scene}
	out["currentSceneId"] = scene["id"]
	return out, false, nil
}

// V1ToV2 gathers the top level project fields into metadata and settings,
// gives every scene a bookmarks list and stamps version 2.
func V1ToV2(rec projects.Record) (projects.Record, bool, error) {
	if v, ok := number(rec["version"]); ok && v >= 2 {
		return nil, true, nil
	}

	src := clone(rec)
	now := mapper.FormatISO(time.Now())

	meta, _ := src["metadata"].(map[string]any)
	meta = clone(meta)
	if _, ok := meta["id"]; !ok {
		if id := ProjectID(src); id != "" {
			meta["id"] = id
		}
	}
	setDefault(meta, "name", src["name"], "Untitled project")
	setDefault(meta, "duration", src["duration"], float64(0))
	setDefault(meta, "createdAt", src["createdAt"], now)
	setDefault(meta, "updatedAt", src["updatedAt"], now)

	settings, _ := src["settings"].(map[string]any)
	settings = clone(settings)
	setDefault(settings, "fps", src["fps"], float64(defaultFPS))
	setDefault(settings, "canvasSize", src["canvasSize"], map[string]any{
		"width":  float64(defaultWidth),
		"height": float64(defaultHeight),
	})
	if _, ok := settings["background"]; !ok {
		bg := map[string]any{
			"type":  stringOr(src["backgroundType"], "color"),
			"color": stringOr(src["backgroundColor"], defaultBackground),
		}
		if blur, ok := number(src["blurIntensity"]); ok {
			bg["blurIntensity"] = blur
		}
		settings["background"] = bg
	}
	setDefault(settings, "originalCanvasSize", src["originalCanvasSize"], nil)

	legacyScenes, _ := src["scenes"].([]any)
	scenes := make([]any, 0, len(legacyScenes))
	for _, s := range legacyScenes {
		scene, ok := s.(map[string]any)
		if !ok {
			continue
		}
		scene = clone(scene)
		if _, ok := scene["bookmarks"].([]any); !ok {
			scene["bookmarks"] = []any{}
		}
		scenes = append(scenes, scene)
	}

	currentScene, _ := src["currentSceneId"].(string)
	if currentScene == "" && len(scenes) > 0 {
		if first, ok := scenes[0].(map[string]any); ok {
			currentScene, _ = first["id"].(string)
		}
	}

	return projects.Record{
		"metadata":       meta,
		"settings":       settings,
		"scenes":         scenes,
		"currentSceneId": currentScene,
		"version":        float64(CurrentVersion),
	}, false, nil
}

func setDefault(m map[string]any, key string, legacy, fallback any) {
	if _, ok := m[key]; ok {
		return
	}
	if legacy != nil {
		m[key] = legacy
		return
	}
	m[key] = fallback
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// clone copies the top level of rec; nested values are shared. A nil rec
// yields an empty map.
func clone(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
