// Package migrator upgrades persisted project records to the current schema.
//
// It runs once when the local store is opened, before anything else reads
// projects. Records are handled as raw documents because older schema
// versions do not decode into models.Project.
package migrator
