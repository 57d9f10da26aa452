// Package csync ports Go's own channel + goroutine + select model onto
// itself: channels are first-class values with flags (open, preferred) and
// a kind (Sync, Buffered, Timeout), and a select engine multiplexes receives
// across a heterogeneous, dynamically-sized set of them with preference,
// timeout, and non-blocking variants that the builtin select statement has
// no way to express.
package csync

import (
	"context"
	"iter"
)

// Kind identifies which of the three channel variants a Chan is.
type Kind int

const (
	// Sync is a rendezvous channel: Put blocks until a concurrent Take or
	// winning Poll accepts the value. It never buffers.
	Sync Kind = iota
	// Buffered is a bounded FIFO of fixed capacity.
	Buffered
	// Timeout is a single-slot channel that yields the TIMEOUT sentinel
	// once its configured duration elapses, then closes.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case Sync:
		return "sync"
	case Buffered:
		return "buffered"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// timeoutSentinel is TIMEOUT's concrete type: a distinct, comparable,
// zero-size singleton so TIMEOUT never collides with a legitimately
// transported value, including a transported nil.
type timeoutSentinel struct{}

// TIMEOUT is the distinguished value a Timeout channel yields when its
// duration elapses. It is comparable: v == csync.TIMEOUT works.
var TIMEOUT any = timeoutSentinel{}

// Chan is the contract every channel variant implements. "Nothing
// available" is realized as the Go idiom of a (value, ok bool) pair: ok is
// false exactly when nothing was available, regardless of what value a
// channel legitimately carries (including a transported nil).
type Chan interface {
	// Kind reports which variant this channel is.
	Kind() Kind

	// Put delivers v, blocking per the variant's semantics until accepted,
	// ctx is cancelled, or the channel is closed (ErrClosedChannel).
	Put(ctx context.Context, v any) error

	// Take removes and returns the oldest value, blocking until one is
	// available, ctx is cancelled, or the channel is closed and drained
	// (ErrClosedChannel).
	Take(ctx context.Context) (any, error)

	// Poll removes and returns the oldest value if immediately available,
	// without blocking.
	Poll() (any, bool)

	// Peek returns the oldest value without removing it, without blocking.
	Peek() (any, bool)

	// Size reports the current queue length. Always 0 for Sync channels.
	Size() int

	// Clear discards all buffered values. Fails with ErrUnsupported on a
	// Timeout channel.
	Clear() error

	// Close marks the channel closed. Idempotent.
	Close()

	// Closed reports whether Close has been called.
	Closed() bool

	// Preferred reports the channel's current preference flag.
	Preferred() bool

	// Prefer marks the channel preferred.
	Prefer()

	// Unprefer clears the channel's preference flag.
	Unprefer()

	// Snapshot returns a non-removing, ordered copy of current contents.
	Snapshot() []any

	// Drain atomically removes and returns all currently buffered values.
	Drain() []any

	// LazyDrain produces a finite, race-permissive sequence that repeatedly
	// polls until empty. A concurrent producer may cause it to end early or
	// to surface values that arrive mid-iteration.
	LazyDrain() iter.Seq[any]

	// String renders the channel for debugging: "<=[ v1 v2 … ] ", with a
	// ":closed " prefix when closed. Diagnostic only, not contractual.
	String() string
}
