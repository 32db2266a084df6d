// Package models defines the editor's domain types (projects, scenes, tracks,
// elements and media assets) and the wire shapes exchanged with the backend.
package models
