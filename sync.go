package csync

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// syncChan is a rendezvous channel: it never buffers a value on its own.
// Put hands v directly to a concurrent Take (or a Poll that wins the race)
// through an unbuffered native channel, which is exactly the synchronous
// handoff primitive a rendezvous channel needs; Go's own unbuffered chan
// already is that primitive.
//
// Open question resolution (peek on Sync, see DESIGN.md): this
// implementation takes option (b) — a producer blocked in Put publishes its
// value to `pending` for the duration of the handoff, so a concurrent Peek
// can observe it. This makes Sync channels reliably selectable whenever a
// producer is waiting, rather than only by chance.
type syncChan struct {
	ch        chan any
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	preferred atomic.Bool
	pending   atomic.Pointer[any]
}

// NewSync creates a rendezvous channel.
func NewSync() Chan {
	return &syncChan{
		ch:   make(chan any),
		done: make(chan struct{}),
	}
}

func (c *syncChan) Kind() Kind { return Sync }

func (c *syncChan) Put(ctx context.Context, v any) error {
	if c.closed.Load() {
		return ErrClosedChannel
	}
	c.pending.Store(&v)
	defer c.pending.Store(nil)
	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosedChannel
	}
}

func (c *syncChan) Take(ctx context.Context) (any, error) {
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		// A producer may have been mid-handoff when Close fired; give it
		// one more uncontested chance before reporting closed-and-empty.
		select {
		case v := <-c.ch:
			return v, nil
		default:
			return nil, ErrClosedChannel
		}
	}
}

func (c *syncChan) Poll() (any, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		return nil, false
	}
}

func (c *syncChan) Peek() (any, bool) {
	p := c.pending.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

func (c *syncChan) Size() int { return 0 }

func (c *syncChan) Clear() error { return nil }

func (c *syncChan) Close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *syncChan) Closed() bool { return c.closed.Load() }

func (c *syncChan) Preferred() bool { return c.preferred.Load() }

func (c *syncChan) Prefer() { c.preferred.Store(true) }

func (c *syncChan) Unprefer() { c.preferred.Store(false) }

func (c *syncChan) Snapshot() []any { return []any{} }

func (c *syncChan) Drain() []any { return []any{} }

func (c *syncChan) LazyDrain() iter.Seq[any] {
	return func(yield func(any) bool) {
		for {
			v, ok := c.Poll()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (c *syncChan) String() string {
	if c.Closed() {
		return ":closed <=[ ] "
	}
	return "<=[ ] "
}
