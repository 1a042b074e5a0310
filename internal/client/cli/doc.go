// Package cli provides the interactive bookmarks command-line client.
//
// It wires configuration, the HTTP API client and a REPL. Commands cover
// signup/signin, the caller's profile and bookmark CRUD plus export. A
// background watcher pings the server and shows online/offline in the
// prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
