// Package client bootstraps the local persistence of the vibecut client.
//
// InitDatabase opens the SQLite file and applies the embedded goose
// migrations (see internal/client/migrations). OpenStores picks the keyed
// store backend from configuration (SQLite or Redis) and wires the typed
// project, media and metadata repositories over it.
//
//	stores, err := client.OpenStores(ctx, cfg)
//	if err != nil { ... }
//	defer stores.Close()
package client
