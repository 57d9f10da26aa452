package csync

import "errors"

// Error kinds surfaced synchronously to callers. Cancellation is not
// represented here; it travels as context.Canceled / context.DeadlineExceeded
// the same way every other context-aware stdlib call reports it.
var (
	// ErrClosedChannel is returned by Put on a closed channel, and by Take
	// once a closed channel's remaining buffered values are exhausted.
	ErrClosedChannel = errors.New("csync: channel is closed")

	// ErrUnsupported is returned by Put and Clear on a Timeout channel.
	ErrUnsupported = errors.New("csync: operation unsupported on this channel kind")

	// ErrInvalidArgument is returned for non-positive buffer capacity,
	// negative timeouts, an empty channel set passed to Select or
	// SelectTimeout, or a SelectF call with no clauses and no default handler.
	ErrInvalidArgument = errors.New("csync: invalid argument")
)
