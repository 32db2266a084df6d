package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func textLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := textLogger(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG msg=dbg a=1",
		"level=INFO msg=inf b=2",
		"level=WARN msg=wrn c=3",
		"level=ERROR msg=err d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_WithCarriesAttributes(t *testing.T) {
	log, buf := textLogger(slog.LevelInfo)

	log.With("workspace_id", "ws-1").Info(context.Background(), "resolved", "cached", true)

	out := buf.String()
	assert.Contains(t, out, "workspace_id=ws-1")
	assert.Contains(t, out, "cached=true")
}

func TestSlogLogger_BelowLevelIsDropped(t *testing.T) {
	log, buf := textLogger(slog.LevelWarn)

	log.Info(context.TODO(), "quiet")
	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().With("k", "v").Error(context.Background(), "nothing")
	})
}

func TestNewSlogLoggerTo(t *testing.T) {
	t.Run("debug records source", func(t *testing.T) {
		var buf bytes.Buffer
		NewSlogLoggerTo(&buf, false, slog.LevelDebug).Debug(context.Background(), "tick")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "source=")
	})

	t.Run("info omits source and drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewSlogLoggerTo(&buf, false, slog.LevelInfo)
		log.Debug(context.Background(), "hidden")
		log.Info(context.Background(), "shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
		assert.NotContains(t, buf.String(), "source=")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		NewSlogLoggerTo(&buf, true, slog.LevelWarn).Warn(context.Background(), "careful", "n", 1)
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), `"n":1`)
	})
}
