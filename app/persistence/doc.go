// Package persistence provides the local key/value storage the terminal keeps its state in.
// Values are opaque byte slices addressed by short string keys, mirroring browser local storage.
// Supported backends: in-memory map, a directory of files, SQLite with WAL mode, badger and redis.
package persistence
