package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

// ErrUnsupportedFile is returned for files that are not video, image or
// audio.
var ErrUnsupportedFile = errors.New("unsupported media file")

// mediaExtensions covers formats the system mime table may not know.
var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func contentTypeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := mediaExtensions[ext]; ok {
		return ct
	}
	ct := mime.TypeByExtension(ext)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// FromFile reads path into a MediaAsset without an id. Image dimensions are
// filled in when the format is known.
func FromFile(path string) (models.MediaAsset, error) {
	contentType := contentTypeOf(path)

	kind, ok := mediaTypeOf(contentType)
	if !ok {
		return models.MediaAsset{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	a := models.MediaAsset{
		Name:        filepath.Base(path),
		Type:        kind,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if kind == models.MediaImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			a.Width, a.Height = cfg.Width, cfg.Height
		}
	}
	return a, nil
}

func mediaTypeOf(contentType string) (models.MediaType, bool) {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaVideo, true
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaImage, true
	case strings.HasPrefix(contentType, "audio/"):
		return models.MediaAudio, true
	}
	return "", false
}
