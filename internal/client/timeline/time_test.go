package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeCode(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		format  TimeCodeFormat
		fps     float64
		want    string
	}{
		{"default centiseconds", 3661.23, "", 0, "01:01:01:23"},
		{"frames", 10.5, FormatHHMMSSFF, 30, "00:00:10:15"},
		{"minutes and seconds", 125.9, FormatMMSS, 0, "02:05"},
		{"hours minutes seconds", 3723.4, FormatHHMMSS, 0, "01:02:03"},
		{"negative clamps to zero", -3, FormatHHMMSSCS, 0, "00:00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeCode(tt.seconds, tt.format, tt.fps))
		})
	}
}

func TestParseTimeCode(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		format TimeCodeFormat
		fps    float64
		want   float64
		ok     bool
	}{
		{"HH:MM:SS", "01:02:03", FormatHHMMSS, 30, 3723, true},
		{"MM:SS seconds out of range", "01:99", FormatMMSS, 30, 0, false},
		{"MM:SS", "12:34", FormatMMSS, 30, 754, true},
		{"centiseconds", "00:00:01:50", FormatHHMMSSCS, 30, 1.5, true},
		{"frames", "00:00:10:15", FormatHHMMSSFF, 30, 10.5, true},
		{"frame beyond fps", "00:00:10:30", FormatHHMMSSFF, 30, 0, false},
		{"minutes out of range", "01:60:00", FormatHHMMSS, 30, 0, false},
		{"wrong segment count", "01:02", FormatHHMMSS, 30, 0, false},
		{"not a number", "aa:bb", FormatMMSS, 30, 0, false},
		{"negative", "-1:10", FormatMMSS, 30, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimeCode(tt.code, tt.format, tt.fps)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestGuessTimeCodeFormat(t *testing.T) {
	f, ok := GuessTimeCodeFormat("12:34")
	assert.True(t, ok)
	assert.Equal(t, FormatMMSS, f)

	f, _ = GuessTimeCodeFormat("01:02:03")
	assert.Equal(t, FormatHHMMSS, f)

	f, _ = GuessTimeCodeFormat("01:02:03:12")
	assert.Equal(t, FormatHHMMSSFF, f)

	_, ok = GuessTimeCodeFormat("12")
	assert.False(t, ok)
}

func TestFrameSnapping(t *testing.T) {
	assert.Equal(t, 1.2333333333333334, RoundToFrame(1.234, 30))
	assert.Equal(t, 1.2333333333333334, SnapTimeToFrame(1.234, 30))
	assert.Equal(t, 1.234, SnapTimeToFrame(1.234, 0))

	assert.Equal(t, 0.0, GetSnappedSeekTime(-1, 100, 30))
	assert.Equal(t, 100.0, GetSnappedSeekTime(101, 100, 30))

	assert.InDelta(t, 4.96, GetLastFrameTime(5, 25), 1e-9)
	assert.Equal(t, 5.0, GetLastFrameTime(5, 0))
	assert.Equal(t, 0.0, GetLastFrameTime(0, 25))
}
