package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownFeed is returned by Refresh when asked to refresh a feed name
// the client does not recognize.
var ErrUnknownFeed = errors.New("unknown feed")

// FetchFunc performs one fetch+parse cycle for a single feed and returns its
// freshly parsed, immutable snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller runs one feed's scheduled polling loop: an initial fetch on
// Start, then one fetch per period, each bounded by timeout. A failed fetch
// keeps the previous snapshot and is logged, never invalidating what is
// already installed.
type Poller[T any] struct {
	name       string
	period     time.Duration
	timeout    time.Duration
	staleAfter time.Duration
	fetch      FetchFunc[T]
	logger     *slog.Logger

	snapshot   atomic.Pointer[T]
	lastUpdate atomic.Int64 // unix nanos of last successful install

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPoller constructs a Poller with the given empty-snapshot value installed
// until the first successful fetch completes.
func NewPoller[T any](name string, period, timeout, staleAfter time.Duration, empty T, fetch FetchFunc[T], logger *slog.Logger) *Poller[T] {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller[T]{
		name:       name,
		period:     period,
		timeout:    timeout,
		staleAfter: staleAfter,
		fetch:      fetch,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
	p.snapshot.Store(&empty)

	return p
}

// Start performs the initial fetch synchronously, so callers observe a
// populated snapshot as soon as Start returns, then launches the scheduler
// goroutine running one fetch per period until Stop is called.
func (p *Poller[T]) Start(ctx context.Context) {
	p.tick(ctx)

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

func (p *Poller[T]) tick(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.fetch(fetchCtx)
	if err != nil {
		p.logger.Warn("feed fetch failed, keeping previous snapshot",
			"feed", p.name, "error", err)

		return
	}

	p.install(result)
}

func (p *Poller[T]) install(v T) {
	p.snapshot.Store(&v)
	p.lastUpdate.Store(time.Now().UnixNano())
}

// Current returns the most recently installed snapshot, or the empty
// snapshot passed to NewPoller if none has been installed yet.
func (p *Poller[T]) Current() T {
	return *p.snapshot.Load()
}

// HasRecentData reports whether the newest install is within the stale
// window. Before any successful install this is false.
func (p *Poller[T]) HasRecentData() bool {
	last := p.lastUpdate.Load()
	if last == 0 {
		return false
	}

	return time.Since(time.Unix(0, last)) <= p.staleAfter
}

// LastUpdate returns the time of the most recent successful install, the
// zero time if none has happened yet.
func (p *Poller[T]) LastUpdate() time.Time {
	last := p.lastUpdate.Load()
	if last == 0 {
		return time.Time{}
	}

	return time.Unix(0, last)
}

// Refresh forces an immediate fetch+install cycle outside the normal
// schedule, bounded by the same per-fetch timeout.
func (p *Poller[T]) Refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.fetch(fetchCtx)
	if err != nil {
		p.logger.Warn("forced feed refresh failed, keeping previous snapshot",
			"feed", p.name, "error", err)

		return errors.WithStack(err)
	}

	p.install(result)

	return nil
}

// Stop signals the scheduler goroutine to exit and waits up to grace for it
// to finish any in-flight fetch before returning.
func (p *Poller[T]) Stop(grace time.Duration) {
	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		p.logger.Warn("feed scheduler did not stop within grace period", "feed", p.name)
	}
}
