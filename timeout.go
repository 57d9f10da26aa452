package csync

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dando385/csync/internal/queue"
)

// timeoutChan is a single-slot channel that yields TIMEOUT once its
// duration elapses, then closes. Put and Clear are unsupported.
type timeoutChan struct {
	q         *queue.FIFO
	closed    atomic.Bool
	preferred atomic.Bool
	stop      context.CancelFunc
}

// NewTimeout creates a Timeout channel armed for duration d. It is born
// preferred so that a deadline coexisting with regular data sources does
// not have to win a random draw against perpetually-ready channels.
func NewTimeout(d time.Duration) Chan {
	ctx, cancel := context.WithCancel(context.Background())
	c := &timeoutChan{q: queue.New(1), stop: cancel}
	c.preferred.Store(true)

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			c.q.TryPush(TIMEOUT)
			c.closed.Store(true)
			c.q.Wake()
		case <-ctx.Done():
		}
	}()

	return c
}

func (c *timeoutChan) Kind() Kind { return Timeout }

func (c *timeoutChan) Put(ctx context.Context, v any) error {
	return fmt.Errorf("%w: timeout channels cannot be put to", ErrUnsupported)
}

func (c *timeoutChan) Take(ctx context.Context) (any, error) {
	for {
		wait := c.q.Wait()
		if v, ok := c.q.TryPop(); ok {
			return v, nil
		}
		if c.closed.Load() {
			return nil, ErrClosedChannel
		}
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *timeoutChan) Poll() (any, bool) { return c.q.TryPop() }

func (c *timeoutChan) Peek() (any, bool) { return c.q.Peek() }

func (c *timeoutChan) Size() int { return c.q.Len() }

func (c *timeoutChan) Clear() error {
	return fmt.Errorf("%w: timeout channels cannot be cleared", ErrUnsupported)
}

// Close cancels the pending firing goroutine if it hasn't fired yet. Calling
// Close early does not deliver TIMEOUT; it simply prevents it from ever
// being delivered, same as discarding the channel before its deadline.
func (c *timeoutChan) Close() {
	c.closed.Store(true)
	c.stop()
	c.q.Wake()
}

func (c *timeoutChan) Closed() bool { return c.closed.Load() }

func (c *timeoutChan) Preferred() bool { return c.preferred.Load() }

func (c *timeoutChan) Prefer() { c.preferred.Store(true) }

func (c *timeoutChan) Unprefer() { c.preferred.Store(false) }

func (c *timeoutChan) Snapshot() []any { return c.q.Snapshot() }

func (c *timeoutChan) Drain() []any { return c.q.Drain() }

func (c *timeoutChan) LazyDrain() iter.Seq[any] {
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

func (c *timeoutChan) String() string {
	var b strings.Builder
	if c.Closed() {
		b.WriteString(":closed ")
	}
	b.WriteString("<=[ ")
	for _, v := range c.Snapshot() {
		fmt.Fprintf(&b, "%v ", v)
	}
	b.WriteString("] ")
	return b.String()
}
