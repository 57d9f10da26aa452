package csync

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/dando385/csync/internal/queue"
)

// bufferedChan is a bounded FIFO of fixed capacity. Close does not discard
// values already accepted: Take keeps draining them until the queue is
// empty, matching "values already enqueued on a closed channel remain
// takeable until exhausted".
type bufferedChan struct {
	q         *queue.FIFO
	capacity  int
	closed    atomic.Bool
	preferred atomic.Bool
}

// NewBuffered creates a Buffered channel of the given positive capacity.
func NewBuffered(capacity int) (Chan, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: buffered channel capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}
	return &bufferedChan{q: queue.New(capacity), capacity: capacity}, nil
}

func (c *bufferedChan) Kind() Kind { return Buffered }

func (c *bufferedChan) Put(ctx context.Context, v any) error {
	for {
		if c.closed.Load() {
			return ErrClosedChannel
		}
		wait := c.q.Wait()
		if c.q.TryPush(v) {
			return nil
		}
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *bufferedChan) Take(ctx context.Context) (any, error) {
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

func (c *bufferedChan) Poll() (any, bool) { return c.q.TryPop() }

func (c *bufferedChan) Peek() (any, bool) { return c.q.Peek() }

func (c *bufferedChan) Size() int { return c.q.Len() }

func (c *bufferedChan) Clear() error {
	c.q.Clear()
	return nil
}

// Close marks the channel closed and wakes any blocked Put/Take so they
// re-check state. It does not discard queued values: Take keeps draining
// them until exhausted, per the close-monotonicity invariant.
func (c *bufferedChan) Close() {
	c.closed.Store(true)
	c.q.Wake()
}

func (c *bufferedChan) Closed() bool { return c.closed.Load() }

func (c *bufferedChan) Preferred() bool { return c.preferred.Load() }

func (c *bufferedChan) Prefer() { c.preferred.Store(true) }

func (c *bufferedChan) Unprefer() { c.preferred.Store(false) }

func (c *bufferedChan) Snapshot() []any { return c.q.Snapshot() }

func (c *bufferedChan) Drain() []any { return c.q.Drain() }

func (c *bufferedChan) LazyDrain() iter.Seq[any] {
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

func (c *bufferedChan) String() string {
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
