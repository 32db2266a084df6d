package models

import (
	"slices"
	"time"
)

// TrackType classifies a timeline track.
type TrackType string

const (
	TrackVideo   TrackType = "video"
	TrackAudio   TrackType = "audio"
	TrackText    TrackType = "text"
	TrackSticker TrackType = "sticker"
)

// ElementType classifies a timeline element.
type ElementType string

const (
	ElementVideo   ElementType = "video"
	ElementImage   ElementType = "image"
	ElementAudio   ElementType = "audio"
	ElementText    ElementType = "text"
	ElementSticker ElementType = "sticker"
)

// Audio element source types.
const (
	SourceUpload  = "upload"
	SourceLibrary = "library"
)

// Project is the authoritative editable document.
//
// Version is the last version acknowledged by the backend. It only moves
// forward after a successful cloud write.
type Project struct {
	Metadata       ProjectMetadata `json:"metadata"`
	CurrentSceneID string          `json:"currentSceneId"`
	Settings       Settings        `json:"settings"`
	Scenes         []Scene         `json:"scenes"`
	Version        int             `json:"version"`
}

type ProjectMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settings are the project-wide render settings. Keys not modelled here are
// kept in Extra.
type Settings struct {
	FPS                int            `json:"fps"`
	CanvasSize         CanvasSize     `json:"canvasSize"`
	Background         Background     `json:"background"`
	OriginalCanvasSize *CanvasSize    `json:"originalCanvasSize"`
	Extra              map[string]any `json:"-" plain:"inline"`
}

type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Background struct {
	Type          string   `json:"type"`
	Color         string   `json:"color,omitempty"`
	BlurIntensity *float64 `json:"blurIntensity,omitempty"`
}

type settingsJSON Settings

func (s Settings) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(settingsJSON(s), s.Extra)
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var aux settingsJSON
	extra, err := unmarshalWithExtra(data, &aux)
	if err != nil {
		return err
	}
	*s = Settings(aux)
	s.Extra = extra
	return nil
}

type Scene struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsMain    bool      `json:"isMain"`
	Bookmarks []float64 `json:"bookmarks"`
	Tracks    []Track   `json:"tracks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MainScene returns the scene flagged as main, or the first one.
func (p *Project) MainScene() *Scene {
	for i := range p.Scenes {
		if p.Scenes[i].IsMain {
			return &p.Scenes[i]
		}
	}
	if len(p.Scenes) > 0 {
		return &p.Scenes[0]
	}
	return nil
}

// CurrentScene returns the scene matching CurrentSceneID, falling back to
// MainScene.
func (p *Project) CurrentScene() *Scene {
	for i := range p.Scenes {
		if p.Scenes[i].ID == p.CurrentSceneID {
			return &p.Scenes[i]
		}
	}
	return p.MainScene()
}

// Clone copies p deep enough that scenes, tracks and element lists can be
// edited without affecting p.
func (p Project) Clone() Project {
	out := p
	if p.Scenes != nil {
		out.Scenes = make([]Scene, len(p.Scenes))
	}
	for i, sc := range p.Scenes {
		sc.Bookmarks = slices.Clone(sc.Bookmarks)
		tracks := sc.Tracks
		if tracks != nil {
			sc.Tracks = make([]Track, len(tracks))
		}
		for j, t := range tracks {
			t.Elements = slices.Clone(t.Elements)
			sc.Tracks[j] = t
		}
		out.Scenes[i] = sc
	}
	return out
}

type Track struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     TrackType `json:"type"`
	IsMain   bool      `json:"isMain,omitempty"`
	Muted    bool      `json:"muted"`
	Hidden   bool      `json:"hidden"`
	Elements []Element `json:"elements"`
}

// Element is a positioned clip on a track. MediaID is a lookup key into the
// project's media assets, not an ownership link.
type Element struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	Name       string      `json:"name"`
	StartTime  float64     `json:"startTime"`
	Duration   float64     `json:"duration"`
	TrimStart  float64     `json:"trimStart"`
	TrimEnd    float64     `json:"trimEnd"`
	MediaID    string      `json:"mediaId,omitempty"`
	SourceType string      `json:"sourceType,omitempty"`
	Muted      bool        `json:"muted,omitempty"`
	Hidden     bool        `json:"hidden,omitempty"`
	Transform  *Transform  `json:"transform,omitempty"`
	Opacity    *float64    `json:"opacity,omitempty"`

	// Extra carries type-specific fields (text content, fonts, sticker ids…).
	Extra map[string]any `json:"-" plain:"inline"`

	// Buffer is decoded audio kept in memory only.
	Buffer *AudioBuffer `json:"-"`
}

// EndTime is where the visible part of the element stops on the timeline.
func (e Element) EndTime() float64 {
	return e.StartTime + e.Duration - e.TrimStart - e.TrimEnd
}

type Transform struct {
	Scale    float64 `json:"scale"`
	Position Point   `json:"position"`
	Rotate   float64 `json:"rotate"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AudioBuffer holds decoded PCM samples.
type AudioBuffer struct {
	SampleRate int
	Channels   [][]float32
}

type elementJSON Element

func (e Element) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(elementJSON(e), e.Extra)
}

func (e *Element) UnmarshalJSON(data []byte) error {
	var aux elementJSON
	extra, err := unmarshalWithExtra(data, &aux)
	if err != nil {
		return err
	}
	*e = Element(aux)
	e.Extra = extra
	return nil
}
