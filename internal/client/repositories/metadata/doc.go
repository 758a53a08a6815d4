// Package metadata stores small key/value records in the local SQLite
// "metadata" table. The local auth store keeps the logged-in user there.
package metadata
