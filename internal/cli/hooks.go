package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/pkg/observability"
)

// runHooks is the union of all observability hook kinds.
type runHooks interface {
	observability.InstallHooks
	observability.CacheHooks
	observability.HTTPHooks
}

// debugHooks counts events like its Tally and also logs them at debug level.
type debugHooks struct {
	*observability.Tally
	logger *log.Logger
}

// registerHooks installs a fresh Tally for the run. With debug set, every
// event is also logged.
func registerHooks(logger *log.Logger, debug bool) *observability.Tally {
	tally := &observability.Tally{}
	var h runHooks = tally
	if debug {
		h = &debugHooks{Tally: tally, logger: logger}
	}
	observability.SetInstallHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return tally
}

func (h *debugHooks) OnStepResolved(ctx context.Context, step string, cached bool) {
	h.Tally.OnStepResolved(ctx, step, cached)
	h.logger.Debug("step resolved", "step", step, "cached", cached)
}

func (h *debugHooks) OnMirrorAttempt(ctx context.Context, file, mirror string, d time.Duration, err error) {
	h.Tally.OnMirrorAttempt(ctx, file, mirror, d, err)
	if err != nil {
		h.logger.Debug("mirror attempt failed", "file", file, "mirror", mirror, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("mirror attempt", "file", file, "mirror", mirror, "duration", d.Round(time.Millisecond))
}

func (h *debugHooks) OnExtract(ctx context.Context, file string, entries int, err error) {
	h.Tally.OnExtract(ctx, file, entries, err)
	h.logger.Debug("archive processed", "file", file, "entries", entries, "err", err)
}

func (h *debugHooks) OnCacheHit(ctx context.Context, key string) {
	h.Tally.OnCacheHit(ctx, key)
	h.logger.Debug("cache hit", "key", key)
}

func (h *debugHooks) OnCacheMiss(ctx context.Context, key string) {
	h.Tally.OnCacheMiss(ctx, key)
	h.logger.Debug("cache miss", "key", key)
}

func (h *debugHooks) OnCacheSet(ctx context.Context, key string, size int) {
	h.Tally.OnCacheSet(ctx, key, size)
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h *debugHooks) OnRequest(ctx context.Context, method, host, path string) {
	h.Tally.OnRequest(ctx, method, host, path)
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *debugHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.Tally.OnError(ctx, method, host, path, err)
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
