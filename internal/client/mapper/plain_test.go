package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mathNaN() float64 { return math.NaN() }

type Base struct {
	Inner string `json:"inner"`
}

type sample struct {
	Base
	Name     string            `json:"name"`
	Skip     string            `json:"-"`
	Empty    string            `json:"empty,omitempty"`
	Nil      []int             `json:"nil"`
	When     time.Time         `json:"when"`
	Ptr      *int              `json:"ptr"`
	Untagged int
	Extra    map[string]string `json:"-" plain:"inline"`
	hidden   string
}

func TestToPlainObject(t *testing.T) {
	in := sample{
		Base:     Base{Inner: "x"},
		Name:     "n",
		Skip:     "s",
		When:     time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("CET", 3600)),
		Untagged: 7,
		Extra:    map[string]string{"extra": "e", "name": "shadowed"},
		hidden:   "h",
	}

	got, err := toPlainObject(in)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"inner":    "x",
		"name":     "n",
		"nil":      []any{},
		"when":     "2026-01-02T02:04:05.006Z",
		"ptr":      nil,
		"Untagged": float64(7),
		"extra":    "e",
	}, got)
}

func TestToPlainObject_NotAnObject(t *testing.T) {
	_, err := toPlainObject([]string{"a"})
	assert.ErrorIs(t, err, ErrNotPlain)

	_, err = toPlainObject(struct {
		F float64 `json:"f"`
	}{F: math.Inf(1)})
	assert.ErrorIs(t, err, ErrNotPlain)
}

func TestParseISO(t *testing.T) {
	fallback := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, fallback, ParseISO("", fallback))
	assert.Equal(t, fallback, ParseISO("yesterday", fallback))

	got := ParseISO("2026-02-10T01:30:00.250Z", fallback)
	assert.Equal(t, "2026-02-10T01:30:00.250Z", FormatISO(got))
}
