package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront-service/internal/domain"
)

// DefaultTTL is how long a loaded snapshot is served before a refresh.
const DefaultTTL = 5 * time.Minute

// DefaultFetchTimeout bounds one source fetch. Fetches are detached from the
// caller's context, so this is what stops a hung source.
const DefaultFetchTimeout = 30 * time.Second

const snapshotKey = "catalog"

// Snapshot is one normalized catalog load.
type Snapshot struct {
	Products []domain.Product
	Issues   []Issue
	Dropped  int
	LoadedAt time.Time
}

// Loader keeps the current catalog snapshot. Concurrent expiry refreshes share
// a single in-flight fetch; a forced Refresh always starts a new one.
type Loader struct {
	source       Source
	ttl          time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time

	group singleflight.Group
	gen   atomic.Uint64

	mu        sync.RWMutex
	snapshot  *Snapshot
	storedGen uint64
}

// NewLoader creates a loader over source. A non-positive ttl uses DefaultTTL.
func NewLoader(source Source, ttl time.Duration, logger *zap.Logger) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source:       source,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Snapshot returns the cached snapshot while it is fresh and refreshes it
// otherwise. When a refresh fails and an older snapshot exists, the older
// snapshot is served.
func (l *Loader) Snapshot(ctx context.Context) (*Snapshot, error) {
	l.mu.RLock()
	current := l.snapshot
	l.mu.RUnlock()

	if current != nil && l.now().Sub(current.LoadedAt) < l.ttl {
		return current, nil
	}

	fresh, err := l.load(ctx)
	if err != nil {
		if current != nil && ctx.Err() == nil {
			l.logger.Warn("catalog refresh failed, serving stale snapshot",
				zap.Time("loaded_at", current.LoadedAt),
				zap.Error(err))
			return current, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Products is a shorthand for the current snapshot's products.
func (l *Loader) Products(ctx context.Context) ([]domain.Product, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// Refresh fetches and normalizes the catalog now. It never joins a fetch that
// started before the call, so writes committed before Refresh are visible in
// its result.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	l.group.Forget(snapshotKey)
	return l.load(ctx)
}

// load runs or joins the shared fetch. The fetch itself is detached from ctx
// so one cancelled caller does not fail the others; ctx only bounds the wait.
func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	ch := l.group.DoChan(snapshotKey, func() (interface{}, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("catalog fetch shared with concurrent caller")
		}
		return res.Val.(*Snapshot), nil
	}
}

func (l *Loader) fetch(ctx context.Context) (*Snapshot, error) {
	gen := l.gen.Add(1)
	ctx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	records, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	res := Normalize(records)
	snap := &Snapshot{
		Products: res.Products,
		Issues:   res.Issues,
		Dropped:  res.Dropped,
		LoadedAt: l.now(),
	}
	if res.Dropped > 0 || len(res.Issues) > 0 {
		l.logger.Warn("catalog normalized with issues",
			zap.Int("dropped", res.Dropped),
			zap.Int("issues", len(res.Issues)))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// A fetch that started earlier must not replace a newer one's result.
	if gen < l.storedGen {
		l.logger.Debug("discarding superseded catalog fetch", zap.Uint64("generation", gen))
		return l.snapshot, nil
	}
	l.snapshot = snap
	l.storedGen = gen
	l.logger.Info("catalog loaded", zap.Int("products", len(snap.Products)))
	return snap, nil
}
