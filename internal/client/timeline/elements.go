package timeline

import (
	"math"
	"sort"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
)

// RequiresMediaID reports whether an element is backed by a media asset:
// video and image always, audio unless it comes from the built-in library.
func RequiresMediaID(e models.Element) bool {
	switch e.Type {
	case models.ElementVideo, models.ElementImage:
		return true
	case models.ElementAudio:
		return e.SourceType != models.SourceLibrary
	}
	return false
}

// CheckElementOverlaps reports whether any two elements intersect.
// Touching boundaries do not count.
func CheckElementOverlaps(elements []models.Element) bool {
	sorted := sortedByStart(elements)

	end := math.Inf(-1)
	for _, e := range sorted {
		if e.StartTime < end {
			return true
		}
		end = math.Max(end, e.EndTime())
	}
	return false
}

// ResolveElementOverlaps returns the elements ordered by start time with
// every overlapping element pushed to the end of its predecessor.
func ResolveElementOverlaps(elements []models.Element) []models.Element {
	out := sortedByStart(elements)
	for i := 1; i < len(out); i++ {
		if prevEnd := out[i-1].EndTime(); out[i].StartTime < prevEnd {
			out[i].StartTime = prevEnd
		}
	}
	return out
}

// WouldElementOverlap reports whether [start, end) would intersect any
// element other than excludeID.
func WouldElementOverlap(elements []models.Element, start, end float64, excludeID string) bool {
	for _, e := range elements {
		if e.ID == excludeID {
			continue
		}
		if start < e.EndTime() && end > e.StartTime {
			return true
		}
	}
	return false
}

// RemoveElementsByMediaID drops every element referencing mediaID from all
// tracks and returns the new tracks and the number of elements removed.
func RemoveElementsByMediaID(tracks []models.Track, mediaID string) ([]models.Track, int) {
	removed := 0
	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		kept := make([]models.Element, 0, len(t.Elements))
		for _, e := range t.Elements {
			if e.MediaID == mediaID && mediaID != "" {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		t.Elements = kept
		out[i] = t
	}
	return out, removed
}

func sortedByStart(elements []models.Element) []models.Element {
	out := append([]models.Element(nil), elements...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}
