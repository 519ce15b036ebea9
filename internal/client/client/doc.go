// Package client talks to the LinkSphere REST API.
//
// The Client interface is the contract the services depend on; HTTPClient is
// the net/http implementation. Every request carries an X-Request-ID and,
// when a token is given, a Bearer Authorization header. Requests go through a
// circuit breaker so a dead server fails fast instead of stalling the REPL.
//
// # Error Handling
//
// Failures are reported as sentinels that callers match with errors.Is:
// ErrUnavailable (transport failure or open circuit), ErrUnauthorized,
// ErrNotFound, ErrBadRequest and ErrServer. Non-2xx answers come back as an
// *APIError wrapping one of them and carrying the server's message.
//
// The package also bootstraps the local SQLite database (InitDatabase,
// RunMigrations) that keeps the session between runs.
package client
