// Package store persists sweep records.
//
// Records live in namespaces, one per (subject, combo size, shrink mode).
// Within a namespace a record is keyed by its seed and holds the canonical
// JSON encoding of an ir.SweepRecord. A record is written only once every
// combo for its seed has a result; Put replaces the whole record in one
// transaction, so a crash leaves either the old record or the new one.
//
// # Backends
//
//   - badger: an embedded ordered key-value store. Keys are
//     "<namespace>/<decimal seed>". This is the default.
//   - sqlite: a single sweep_records table in WAL mode, keyed by
//     (namespace, seed).
//
// Reads return records in ascending seed order on both backends.
package store
