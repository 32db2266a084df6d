// Package media persists the media assets of each project. Assets of project
// P live in bucket "media:P" keyed by asset id, so clearing one project's
// media is a single bucket clear.
package media
