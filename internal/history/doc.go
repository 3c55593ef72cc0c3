// Package history records manifest generation runs in SQLite.
//
// Each run stores its configuration snapshot, the class check outcome and one
// row per manifest written. The database is a convenience log rather than a
// source of truth; schema changes bump schemaVersion and users delete the
// file to adopt the new layout.
package history
