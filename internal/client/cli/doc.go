// Package cli provides the interactive medreminder terminal client.
//
// It wires configuration, the local database, the remote auth client and the
// auth state controller into a read-eval-print loop. The app subscribes to
// the controller and prints the outcome of every finished operation, so the
// command handlers only collect input and trigger controller calls.
//
// Key features:
//   - register (with an emailed one-time code), login, forgot password
//   - whoami / logout
//   - addmed, meds, delmed, due for the signed-in user's medicines
//
// A background watcher pings the server and reports online/offline changes.
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
