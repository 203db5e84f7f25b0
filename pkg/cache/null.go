package cache

import "context"

// NullCache is a no-op cache that never stores anything.
// Every resolution step is recomputed when it is used.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string, v any) (bool, error) {
	return false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, v any) error {
	return nil
}

// Clear does nothing.
func (c *NullCache) Clear(ctx context.Context) (int, error) {
	return 0, nil
}

// Dir returns the empty string.
func (c *NullCache) Dir() string { return "" }

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
