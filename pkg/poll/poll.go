// Package poll keeps a cached value fresh by re-fetching it on a fixed
// interval for the current key.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Fetcher loads the value for key.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Result is what consumers read. Err is the last fetch failure and is
// cleared by the next success; Value survives failures.
type Result[V any] struct {
	Value     V
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer func(name string, err error)
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver is called after every completed fetch whose result was kept.
func WithObserver(fn func(name string, err error)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// Unit polls one read. Without a key it is idle. Setting a key fetches
// immediately and then once per interval until the key changes or the unit
// is closed.
type Unit[K comparable, V any] struct {
	name     string
	interval time.Duration
	zero     V
	fetch    Fetcher[K, V]
	opts     options

	mu      sync.Mutex
	hasKey  bool
	key     K
	gen     uint64
	result  Result[V]
	cancel  context.CancelFunc
	refresh chan struct{}
	closed  bool

	updates chan struct{}
	wg      sync.WaitGroup
}

// New creates an idle unit. An interval of zero disables the ticker so the
// unit only fetches on key changes and Refresh.
func New[K comparable, V any](name string, interval time.Duration, zero V, fetch Fetcher[K, V], opts ...Option) *Unit[K, V] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("poll", name)

	return &Unit[K, V]{
		name:     name,
		interval: interval,
		zero:     zero,
		fetch:    fetch,
		opts:     o,
		result:   Result[V]{Value: zero},
		updates:  make(chan struct{}, 1),
	}
}

func (u *Unit[K, V]) Name() string {
	return u.name
}

// SetKey starts polling for key. The previous key's timer and in-flight
// fetch are cancelled and the value resets to zero. Setting the current key
// again is a no-op.
func (u *Unit[K, V]) SetKey(key K) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed || (u.hasKey && u.key == key) {
		return
	}

	u.stopLocked()

	u.hasKey = true
	u.key = key
	u.result = Result[V]{Value: u.zero, Loading: true}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.refresh = make(chan struct{}, 1)

	u.wg.Add(1)
	go u.loop(ctx, u.gen, key, u.refresh)

	u.notify()
}

// Clear drops the key and returns to the zero state.
func (u *Unit[K, V]) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed || !u.hasKey {
		return
	}

	u.stopLocked()

	var zk K
	u.hasKey = false
	u.key = zk
	u.result = Result[V]{Value: u.zero}

	u.notify()
}

// Key reports the current key, if any.
func (u *Unit[K, V]) Key() (K, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.key, u.hasKey
}

// stopLocked cancels the running loop and invalidates its results.
func (u *Unit[K, V]) stopLocked() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.refresh = nil
	u.gen++
}

// Refresh asks for a fetch now. It does nothing while idle.
func (u *Unit[K, V]) Refresh() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.refresh == nil {
		return
	}

	select {
	case u.refresh <- struct{}{}:
	default:
	}
}

func (u *Unit[K, V]) Snapshot() Result[V] {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.result
}

// Updates signals after every state change. Signals are coalesced, so a
// consumer should re-read Snapshot rather than count them. The channel is
// closed by Close.
func (u *Unit[K, V]) Updates() <-chan struct{} {
	return u.updates
}

// Close stops polling and waits for the loop to exit.
func (u *Unit[K, V]) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	u.stopLocked()
	u.mu.Unlock()

	u.wg.Wait()
	close(u.updates)
}

func (u *Unit[K, V]) notify() {
	select {
	case u.updates <- struct{}{}:
	default:
	}
}

func (u *Unit[K, V]) loop(ctx context.Context, gen uint64, key K, refresh <-chan struct{}) {
	defer u.wg.Done()

	var tick <-chan time.Time
	if u.interval > 0 {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	u.run(ctx, gen, key)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			u.run(ctx, gen, key)
		case <-refresh:
			u.run(ctx, gen, key)
		}
	}
}

func (u *Unit[K, V]) run(ctx context.Context, gen uint64, key K) {
	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return
	}
	if !u.result.Loading {
		u.result.Loading = true
		u.notify()
	}
	u.mu.Unlock()

	v, err := u.fetch(ctx, key)

	u.mu.Lock()
	defer u.mu.Unlock()

	// the key changed or the unit closed while fetching
	if gen != u.gen {
		u.opts.logger.Debug("discarding stale result", "key", key)
		return
	}

	u.result.Loading = false
	if err != nil {
		u.opts.logger.Warn("fetch failed", "key", key, "error", err)
		u.result.Err = err
	} else {
		u.result.Value = v
		u.result.Err = nil
		u.result.UpdatedAt = time.Now()
	}

	if u.opts.observer != nil {
		u.opts.observer(u.name, err)
	}

	u.notify()
}
