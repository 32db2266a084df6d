// Package cli provides the interactive vibecut command-line client.
//
// It wires configuration, the local store, the API client and the
// application services behind a cobra command tree. The default command is
// an interactive REPL: log in, pick a workspace, open or create a project,
// import media (which uploads in the background), place it on the timeline
// and push the project to the cloud.
//
// Other commands run the local data migrations or watch an import folder.
package cli
