// Package media keeps the in-memory asset collection of the active project
// and uploads its assets to the cloud.
//
// The collection is observable: every mutation notifies subscribers. Adding
// an asset persists it and then starts a background sync that asks the
// backend for an upload slot, PUTs the bytes to the presigned URL and
// records the resulting cloud file on the asset. Sync failures are logged
// and leave the asset local-only until something triggers sync again.
package media
