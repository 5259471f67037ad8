// Package runs keeps solved runs in memory.
//
// Each run holds the immutable grid it was solved on and the search result,
// so exporters and replays can be produced later without searching again.
// Runs are identified by UUIDv7 strings, which sort by creation time.
// Nothing is written to disk; a restart starts with an empty store.
//
// Usage:
//
//	store := runs.NewManager()
//	run, err := store.Create(&service.Run{Grid: g, Result: result})
//	removed := store.CleanupExpired(time.Hour)
package runs
