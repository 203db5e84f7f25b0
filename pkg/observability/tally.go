package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Tally counts events of one run. It implements [InstallHooks],
// [CacheHooks] and [HTTPHooks] and is safe for concurrent use.
type Tally struct {
	stepsCached    atomic.Int64
	stepsAsked     atomic.Int64
	mirrorAttempts atomic.Int64
	mirrorFailures atomic.Int64
	archives       atomic.Int64
	archiveErrors  atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	cacheWrites    atomic.Int64
	requests       atomic.Int64
	requestErrors  atomic.Int64
}

// TallySnapshot is a point-in-time copy of a [Tally].
type TallySnapshot struct {
	StepsCached    int64
	StepsAsked     int64
	MirrorAttempts int64
	MirrorFailures int64
	Archives       int64
	ArchiveErrors  int64
	CacheHits      int64
	CacheMisses    int64
	CacheWrites    int64
	Requests       int64
	RequestErrors  int64
}

// Snapshot returns the current counts.
func (t *Tally) Snapshot() TallySnapshot {
	return TallySnapshot{
		StepsCached:    t.stepsCached.Load(),
		StepsAsked:     t.stepsAsked.Load(),
		MirrorAttempts: t.mirrorAttempts.Load(),
		MirrorFailures: t.mirrorFailures.Load(),
		Archives:       t.archives.Load(),
		ArchiveErrors:  t.archiveErrors.Load(),
		CacheHits:      t.cacheHits.Load(),
		CacheMisses:    t.cacheMisses.Load(),
		CacheWrites:    t.cacheWrites.Load(),
		Requests:       t.requests.Load(),
		RequestErrors:  t.requestErrors.Load(),
	}
}

func (t *Tally) OnStepResolved(_ context.Context, _ string, cached bool) {
	if cached {
		t.stepsCached.Add(1)
		return
	}
	t.stepsAsked.Add(1)
}

func (t *Tally) OnMirrorAttempt(_ context.Context, _, _ string, _ time.Duration, err error) {
	t.mirrorAttempts.Add(1)
	if err != nil {
		t.mirrorFailures.Add(1)
	}
}

func (t *Tally) OnExtract(_ context.Context, _ string, _ int, err error) {
	t.archives.Add(1)
	if err != nil {
		t.archiveErrors.Add(1)
	}
}

func (t *Tally) OnCacheHit(context.Context, string)      { t.cacheHits.Add(1) }
func (t *Tally) OnCacheMiss(context.Context, string)     { t.cacheMisses.Add(1) }
func (t *Tally) OnCacheSet(context.Context, string, int) { t.cacheWrites.Add(1) }

func (t *Tally) OnRequest(context.Context, string, string, string) { t.requests.Add(1) }

func (t *Tally) OnResponse(context.Context, string, string, string, int, time.Duration) {}

func (t *Tally) OnError(context.Context, string, string, string, error) {
	t.requestErrors.Add(1)
}

var (
	_ InstallHooks = (*Tally)(nil)
	_ CacheHooks   = (*Tally)(nil)
	_ HTTPHooks    = (*Tally)(nil)
)
