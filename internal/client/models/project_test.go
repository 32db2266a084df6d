package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement_JSONKeepsUnknownKeys(t *testing.T) {
	raw := `{"id":"t1","type":"text","name":"Title","startTime":1,"duration":2,"trimStart":0,"trimEnd":0,
		"content":"Hello","fontSize":48,"color":"#fff"}`

	var e Element
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, ElementText, e.Type)
	assert.Equal(t, 1.0, e.StartTime)
	assert.Equal(t, map[string]any{"content": "Hello", "fontSize": 48.0, "color": "#fff"}, e.Extra)

	out, err := json.Marshal(e)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "Hello", back["content"])
	assert.Equal(t, "t1", back["id"])
	assert.NotContains(t, back, "Extra")
}

func TestElement_BufferNeverSerialized(t *testing.T) {
	e := Element{ID: "a1", Type: ElementAudio, MediaID: "m1", Buffer: &AudioBuffer{SampleRate: 44100}}

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "44100")
	assert.NotContains(t, string(out), "Buffer")
}

func TestElement_ModelledKeysWinOverExtra(t *testing.T) {
	e := Element{ID: "real", Extra: map[string]any{"id": "shadow", "x": 1}}

	out, err := json.Marshal(e)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "real", back["id"])
	assert.EqualValues(t, 1, back["x"])
}

func TestElement_EndTime(t *testing.T) {
	e := Element{StartTime: 2, Duration: 10, TrimStart: 1, TrimEnd: 3}
	assert.Equal(t, 8.0, e.EndTime())
}

func TestSettings_JSON(t *testing.T) {
	raw := `{"fps":30,"canvasSize":{"width":1920,"height":1080},"background":{"type":"color","color":"#000000"},"originalCanvasSize":null,"aspect":"16:9"}`

	var s Settings
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, 30, s.FPS)
	assert.Equal(t, CanvasSize{Width: 1920, Height: 1080}, s.CanvasSize)
	assert.Nil(t, s.OriginalCanvasSize)
	assert.Equal(t, map[string]any{"aspect": "16:9"}, s.Extra)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestProject_Scenes(t *testing.T) {
	p := Project{
		CurrentSceneID: "s2",
		Scenes:         []Scene{{ID: "s1"}, {ID: "s2"}, {ID: "s3", IsMain: true}},
	}
	assert.Equal(t, "s3", p.MainScene().ID)
	assert.Equal(t, "s2", p.CurrentScene().ID)

	p.CurrentSceneID = "gone"
	assert.Equal(t, "s3", p.CurrentScene().ID)

	p.Scenes[2].IsMain = false
	assert.Equal(t, "s1", p.MainScene().ID)

	assert.Nil(t, (&Project{}).MainScene())
}

func TestMediaAsset_SyncState(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		state  SyncState
		synced bool
		label  string
	}{
		{"nil state", nil, false, "local-only"},
		{"local only", LocalOnly{}, false, "local-only"},
		{"uploading", Uploading{}, false, "uploading"},
		{"synced by id", Synced{CloudFileID: "f1", SyncedAt: now}, true, "synced"},
		{"synced by key only", Synced{CloudFileKey: "ws/p__m__a.mp4"}, true, "synced"},
		{"empty synced", Synced{}, false, "synced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MediaAsset{ID: "m1", Sync: tt.state}
			assert.Equal(t, tt.synced, a.IsSynced())
			assert.Equal(t, tt.label, a.SyncLabel())
		})
	}
}

func TestMediaAsset_PersistedForm(t *testing.T) {
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	t.Run("synced round trip", func(t *testing.T) {
		a := MediaAsset{
			ID: "m1", Name: "clip.mp4", Type: MediaVideo, ContentType: "video/mp4",
			Size: 3, Data: []byte{1, 2, 3}, URL: "blob:local",
			Sync: Synced{CloudFileID: "f1", CloudFileKey: "k1", SyncedAt: at},
		}

		out, err := json.Marshal(a)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "blob:local")

		var back MediaAsset
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, Synced{CloudFileID: "f1", CloudFileKey: "k1", SyncedAt: at}, back.Sync)
		assert.Equal(t, []byte{1, 2, 3}, back.Data)
		assert.Empty(t, back.URL)
	})

	t.Run("uploading is stored as local-only", func(t *testing.T) {
		out, err := json.Marshal(MediaAsset{ID: "m2", Sync: Uploading{}})
		require.NoError(t, err)
		assert.NotContains(t, string(out), "cloudFileId")

		var back MediaAsset
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, LocalOnly{}, back.Sync)
	})
}
