// Package persistence provides the key-value storage used by the job board store.
// Each key holds a single JSON document. Two backends are available, SQLite in WAL mode
// for durable state surviving restarts and an in-memory map for tests and throwaway runs.
package persistence
