// Package mapper converts between the editable models.Project and the
// models.EditorProjectState snapshot exchanged with the backend.
//
// All functions are pure: they do no I/O and never modify their inputs.
package mapper
