package watcher

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects paths by doublestar globs relative to the watched root.
// Ignore wins over Include; an empty Include admits every path.
type Filter struct {
	Include []string
	Ignore  []string
}

// Ignored reports whether rel or one of its parent directories matches an
// ignore pattern.
func (f Filter) Ignored(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, pattern := range f.Ignore {
		for i := 1; i <= len(parts); i++ {
			if ok, _ := doublestar.Match(pattern, strings.Join(parts[:i], "/")); ok {
				return true
			}
		}
	}
	return false
}

func (f Filter) Included(rel string) bool {
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Match reports whether a file at rel passes the filter.
func (f Filter) Match(rel string) bool {
	return !f.Ignored(rel) && f.Included(rel)
}
