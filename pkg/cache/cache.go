// Package cache implements the decision cache that lets an interactive
// install be resumed or restarted.
//
// Every resolution step (catalog download, upgrade decision, version choice,
// language selection) stores its result under a logical key. On the next run
// the step is served from the cache instead of asking again, until the cache
// is cleared.
//
// [FileCache] keeps one JSON file per key inside the installer's target
// directory. The file name is [FilePrefix] followed by the SHA-256 of the
// logical key, so [FileCache.Clear] can remove exactly the installer's own
// records and nothing else. [NullCache] stores nothing and is used when
// caching is disabled.
//
// A FileCache is owned by a single process. Two installers running against the
// same directory may overwrite each other's entries.
package cache

import "context"

// Cache persists resolved decisions keyed by a logical name.
type Cache interface {
	// Get loads the value stored under key into v, which must be a pointer.
	// It reports false on a miss; corrupt or expired records count as misses.
	Get(ctx context.Context, key string, v any) (bool, error)

	// Set stores v under key, replacing any previous value.
	Set(ctx context.Context, key string, v any) error

	// Clear removes every record owned by the cache and reports how many
	// were removed.
	Clear(ctx context.Context) (int, error)

	// Dir returns the directory backing the cache, or "" if there is none.
	Dir() string
}
