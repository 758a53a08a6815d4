// Package models defines the client-side data model: validated value objects
// for auth input, the logged-in Admin record, the JSON DTOs exchanged with the
// auth server, and the Medicine records kept in the local database.
package models
