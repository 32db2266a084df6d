package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type TimeCodeFormat string

const (
	FormatMMSS     TimeCodeFormat = "MM:SS"
	FormatHHMMSS   TimeCodeFormat = "HH:MM:SS"
	FormatHHMMSSCS TimeCodeFormat = "HH:MM:SS:CS"
	FormatHHMMSSFF TimeCodeFormat = "HH:MM:SS:FF"
)

// DefaultFPS is used when a caller passes a non-positive frame rate to a
// function that needs one.
const DefaultFPS = 30

// FormatTimeCode renders seconds in format. An empty format means
// HH:MM:SS:CS. fps only matters for HH:MM:SS:FF.
func FormatTimeCode(seconds float64, format TimeCodeFormat, fps float64) string {
	if fps <= 0 {
		fps = DefaultFPS
	}
	seconds = math.Max(seconds, 0)

	hours := math.Floor(seconds / 3600)
	minutes := math.Floor(math.Mod(seconds, 3600) / 60)
	secs := math.Floor(math.Mod(seconds, 60))
	frac := math.Mod(seconds, 1)

	switch format {
	case FormatMMSS:
		return fmt.Sprintf("%02d:%02d", int(minutes), int(secs))
	case FormatHHMMSS:
		return fmt.Sprintf("%02d:%02d:%02d", int(hours), int(minutes), int(secs))
	case FormatHHMMSSFF:
		frames := math.Floor(frac * fps)
		return fmt.Sprintf("%02d:%02d:%02d:%02d", int(hours), int(minutes), int(secs), int(frames))
	default:
		centis := math.Floor(frac * 100)
		return fmt.Sprintf("%02d:%02d:%02d:%02d", int(hours), int(minutes), int(secs), int(centis))
	}
}

// ParseTimeCode is the inverse of FormatTimeCode. ok is false when code does
// not match format or a field is out of range.
func ParseTimeCode(code string, format TimeCodeFormat, fps float64) (seconds float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(code), ":")
	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		fields[i] = n
	}

	switch format {
	case FormatMMSS:
		if len(fields) != 2 || fields[1] >= 60 {
			return 0, false
		}
		return float64(fields[0]*60 + fields[1]), true

	case FormatHHMMSS:
		if len(fields) != 3 || fields[1] >= 60 || fields[2] >= 60 {
			return 0, false
		}
		return float64(fields[0]*3600 + fields[1]*60 + fields[2]), true

	case FormatHHMMSSCS, "":
		if len(fields) != 4 || fields[1] >= 60 || fields[2] >= 60 || fields[3] >= 100 {
			return 0, false
		}
		return float64(fields[0]*3600+fields[1]*60+fields[2]) + float64(fields[3])/100, true

	case FormatHHMMSSFF:
		if fps <= 0 || len(fields) != 4 || fields[1] >= 60 || fields[2] >= 60 || float64(fields[3]) >= fps {
			return 0, false
		}
		return float64(fields[0]*3600+fields[1]*60+fields[2]) + float64(fields[3])/fps, true
	}
	return 0, false
}

// GuessTimeCodeFormat picks a format from the number of segments. Four
// segments are read as frames.
func GuessTimeCodeFormat(code string) (TimeCodeFormat, bool) {
	switch len(strings.Split(strings.TrimSpace(code), ":")) {
	case 2:
		return FormatMMSS, true
	case 3:
		return FormatHHMMSS, true
	case 4:
		return FormatHHMMSSFF, true
	}
	return "", false
}

func RoundToFrame(t, fps float64) float64 {
	return math.Round(t*fps) / fps
}

// SnapTimeToFrame is RoundToFrame that leaves t alone for a non-positive fps.
func SnapTimeToFrame(t, fps float64) float64 {
	if fps <= 0 {
		return t
	}
	return RoundToFrame(t, fps)
}

// GetSnappedSeekTime snaps a seek target to a frame and clamps it to
// [0, duration].
func GetSnappedSeekTime(raw, duration, fps float64) float64 {
	snapped := SnapTimeToFrame(raw, fps)
	return math.Min(math.Max(snapped, 0), duration)
}

// GetLastFrameTime is the start time of the final frame.
func GetLastFrameTime(duration, fps float64) float64 {
	if fps <= 0 {
		return duration
	}
	return math.Max(0, duration-1/fps)
}
