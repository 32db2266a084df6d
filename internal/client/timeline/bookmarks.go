package timeline

import (
	"math"
	"sort"
)

// BookmarkTolerance is how close two times must be to count as the same
// bookmark.
const BookmarkTolerance = 0.001

// GetFrameTime snaps t to the nearest frame.
func GetFrameTime(t, fps float64) float64 {
	return RoundToFrame(t, fps)
}

// FindBookmarkIndex returns the index of the bookmark at t, or -1.
func FindBookmarkIndex(bookmarks []float64, t float64) int {
	for i, b := range bookmarks {
		if math.Abs(b-t) < BookmarkTolerance {
			return i
		}
	}
	return -1
}

func IsBookmarkAtTime(bookmarks []float64, t float64) bool {
	return FindBookmarkIndex(bookmarks, t) >= 0
}

// ToggleBookmark removes the bookmark at t if there is one, otherwise adds
// it. The result is sorted; the input is not modified.
func ToggleBookmark(bookmarks []float64, t float64) []float64 {
	if IsBookmarkAtTime(bookmarks, t) {
		return RemoveBookmark(bookmarks, t)
	}

	out := make([]float64, 0, len(bookmarks)+1)
	out = append(out, bookmarks...)
	out = append(out, t)
	sort.Float64s(out)
	return out
}

func RemoveBookmark(bookmarks []float64, t float64) []float64 {
	out := make([]float64, 0, len(bookmarks))
	for _, b := range bookmarks {
		if math.Abs(b-t) >= BookmarkTolerance {
			out = append(out, b)
		}
	}
	return out
}
