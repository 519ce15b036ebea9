// Package cli provides the interactive LinkSphere terminal client.
//
// It wires configuration, the local SQLite store, the API client and the
// services, then runs a REPL where each command stands in for a page of the
// web client: login, register, verify, upload, list, dashboard and so on.
// Commands that need a session refuse to run without one, and guest-only
// commands refuse to run with one.
//
// Background work (the session liveness check and the theme watcher) runs
// for the lifetime of App.Run and stops when the REPL exits.
package cli
