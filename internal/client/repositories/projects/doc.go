// Package projects persists editor projects in the "projects" bucket of the
// local keyed store, one JSON document per project id.
//
// Two views are offered over the same data. Get/Save/List/Delete work with
// typed models.Project values and assume the records are at the current
// schema. Records/PutRecord expose the raw documents to the migration
// runner, which upgrades older shapes before anything else reads them.
package projects
