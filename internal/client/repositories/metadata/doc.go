// Package metadata stores small client settings (selected workspace, last
// opened project, legacy cleanup markers) in the "metadata" bucket of the
// local keyed store.
package metadata
