// Package client talks to the medreminder auth server and bootstraps the
// local database.
//
// # Remote calls
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// JSON/HTTP. Each call validates its request through the value objects in
// internal/client/models first and fails with ErrInvalidData without touching
// the network. A valid request produces exactly one HTTP round trip with no
// retries. Non-2xx responses are decoded as {"code": ...} and mapped through a
// fixed table per endpoint; anything unrecognised becomes ErrServerError.
//
// # Errors
//
// ErrInvalidData, ErrServerError, ErrUserAlreadyExists, ErrInvalidCredentials
// and ErrUnavailable are matched with errors.Is.
//
// # Local database
//
// InitDatabase opens the SQLite file and applies the embedded goose
// migrations (metadata, medicines, medicine_times).
package client
