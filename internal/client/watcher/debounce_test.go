package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertQuiet(t *testing.T, ch <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(d):
	}
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.stop()

	d.add("clip.mp4", OpCreate)
	d.add("clip.mp4", OpModify)
	d.add("clip.mp4", OpModify)

	ev := next(t, d.out)
	assert.Equal(t, "clip.mp4", ev.Path)
	assert.Equal(t, OpCreate, ev.Op)
	assertQuiet(t, d.out, 100*time.Millisecond)
}

func TestDebouncer_Ops(t *testing.T) {
	tests := []struct {
		name string
		ops  []Op
		want Op
	}{
		{"modify only", []Op{OpModify, OpModify}, OpModify},
		{"remove wins", []Op{OpCreate, OpModify, OpRemove}, OpRemove},
		{"recreated", []Op{OpRemove, OpCreate}, OpCreate},
		{"modify after remove", []Op{OpRemove, OpModify}, OpRemove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDebouncer(time.Hour)
			defer d.stop()

			for _, op := range tt.ops {
				d.add("a.png", op)
			}
			require.Equal(t, 1, d.size())
			d.flush()

			ev := next(t, d.out)
			assert.Equal(t, tt.want, ev.Op)
			assert.Zero(t, d.size())
		})
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	d.add("a.png", OpCreate)
	d.stop()
	d.add("b.png", OpCreate)

	assert.Zero(t, d.size())
	assertQuiet(t, d.out, 80*time.Millisecond)
	assert.NotPanics(t, d.stop)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "modify", OpModify.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "unknown", Op(9).String())
}
