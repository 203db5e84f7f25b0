// Package observability provides hooks for metrics, tracing, and logging.
//
// The installer emits events about resolution steps, decision cache access,
// mirror attempts, and archive extraction. Nothing is recorded unless a hook
// is registered; the CLI registers debug-logging hooks when run with -v.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetInstallHooks(&myInstallHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... try one mirror ...
//	observability.Install().OnMirrorAttempt(ctx, file, mirror, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Install Hooks
// =============================================================================

// InstallHooks receives events from the resolution-and-retrieval pipeline.
type InstallHooks interface {
	// OnStepResolved fires after a resolution step produced its value.
	// cached is true when the value was served from the decision cache.
	OnStepResolved(ctx context.Context, step string, cached bool)

	// OnMirrorAttempt fires after a single mirror was tried for a file.
	OnMirrorAttempt(ctx context.Context, file, mirror string, duration time.Duration, err error)

	// OnExtract fires after an archive was processed.
	OnExtract(ctx context.Context, file string, entries int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from decision cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, key string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopInstallHooks is a no-op implementation of InstallHooks.
type NoopInstallHooks struct{}

func (NoopInstallHooks) OnStepResolved(context.Context, string, bool) {}
func (NoopInstallHooks) OnMirrorAttempt(context.Context, string, string, time.Duration, error) {
}
func (NoopInstallHooks) OnExtract(context.Context, string, int, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the hooks of one kind and falls back to noop when unset.
type slot[T any] struct {
	mu   sync.RWMutex
	h    T
	noop T
}

func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.h = s.noop
	s.mu.Unlock()
}

var (
	installSlot = &slot[InstallHooks]{h: NoopInstallHooks{}, noop: NoopInstallHooks{}}
	cacheSlot   = &slot[CacheHooks]{h: NoopCacheHooks{}, noop: NoopCacheHooks{}}
	httpSlot    = &slot[HTTPHooks]{h: NoopHTTPHooks{}, noop: NoopHTTPHooks{}}
)

// SetInstallHooks registers install hooks. A nil h is ignored.
// Call it once at startup, before the first run.
func SetInstallHooks(h InstallHooks) { installSlot.set(h) }

// SetCacheHooks registers decision cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// Install returns the registered install hooks.
func Install() InstallHooks { return installSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	installSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
