package csync

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff schedule for the blocking/timed select wait loop: start small,
// grow by a fixed increment, cap at a ceiling. A production runtime with a
// native multi-channel wait primitive could replace this with a true
// blocking wait; only the observable contract (eventually one value, or
// timeout) needs to hold, which this loop satisfies.
const (
	initialBackoff   = 200 * time.Microsecond
	backoffIncrement = 25 * time.Microsecond
	backoffCeiling   = 1500 * time.Microsecond
)

type attemptResult int

const (
	resultEmpty attemptResult = iota
	resultLostRace
	resultDelivered
)

// selectAttempt performs one readiness scan and at most one poll: partition
// into preferred/non-preferred by each channel's current flag, restrict to
// the ready subset of whichever tier is non-empty (preferred wins outright),
// pick uniformly at random within that tier, and attempt Poll on the pick.
func selectAttempt(chans []Chan) (any, Chan, attemptResult) {
	pool := readySubset(chans, true)
	if len(pool) == 0 {
		pool = readySubset(chans, false)
	}
	if len(pool) == 0 {
		return nil, nil, resultEmpty
	}
	chosen := pool[rand.IntN(len(pool))]
	if v, ok := chosen.Poll(); ok {
		return v, chosen, resultDelivered
	}
	return nil, nil, resultLostRace
}

func readySubset(chans []Chan, preferred bool) []Chan {
	var ready []Chan
	for _, c := range chans {
		if c.Preferred() != preferred {
			continue
		}
		if _, ok := c.Peek(); ok {
			ready = append(ready, c)
		}
	}
	return ready
}

// Select blocks until one channel in chans is ready and returns its value,
// or until ctx is cancelled.
func Select(ctx context.Context, chans ...Chan) (any, Chan, error) {
	if len(chans) == 0 {
		return nil, nil, ErrInvalidArgument
	}
	sleep := initialBackoff
	for {
		v, c, res := selectAttempt(chans)
		switch res {
		case resultDelivered:
			return v, c, nil
		case resultLostRace:
			// Another receiver won; retry the scan immediately, no sleep.
			continue
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(sleep):
		}
		sleep += backoffIncrement
		if sleep > backoffCeiling {
			sleep = backoffCeiling
		}
	}
}

// SelectTimeout is Select bounded by d. A zero d performs exactly one
// readiness probe (no wait loop); a negative d is InvalidArgument.
func SelectTimeout(d time.Duration, chans ...Chan) (any, Chan, error) {
	if d < 0 {
		return nil, nil, ErrInvalidArgument
	}
	if len(chans) == 0 {
		return nil, nil, ErrInvalidArgument
	}
	if d == 0 {
		v, c, res := selectAttempt(chans)
		if res == resultDelivered {
			return v, c, nil
		}
		return nil, nil, context.DeadlineExceeded
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return Select(ctx, chans...)
}

// SelectNowait performs steps 1-3 exactly once, with no wait loop. If no
// channel was ready (or a ready channel lost its race to another receiver),
// it returns the optional sentinel if one was supplied, else ok is false.
func SelectNowait(chans []Chan, sentinel ...any) (any, Chan, bool) {
	v, c, res := selectAttempt(chans)
	if res == resultDelivered {
		return v, c, true
	}
	if len(sentinel) > 0 {
		return sentinel[0], nil, true
	}
	return nil, nil, false
}

// Clause pairs a channel with the handler SelectF invokes when it's chosen.
type Clause struct {
	Ch     Chan
	Handle func(v any) (any, error)
}

// SelectF reads one value per blocking-or-nowait semantics (nowait when
// defaultHandle is non-nil) and invokes the handler paired with the chosen
// channel, returning its result. Errors from a handler (or from
// defaultHandle) propagate to the caller unmodified: SelectF never recovers
// user-domain errors. Duplicate channels collapse to the last handler
// supplied for that channel.
func SelectF(ctx context.Context, clauses []Clause, defaultHandle func() (any, error)) (any, error) {
	if len(clauses) == 0 {
		if defaultHandle != nil {
			return defaultHandle()
		}
		return nil, ErrInvalidArgument
	}

	handlerOf := make(map[Chan]func(any) (any, error), len(clauses))
	order := make([]Chan, 0, len(clauses))
	for _, cl := range clauses {
		if _, seen := handlerOf[cl.Ch]; !seen {
			order = append(order, cl.Ch)
		}
		handlerOf[cl.Ch] = cl.Handle
	}

	if defaultHandle != nil {
		v, c, ok := SelectNowait(order)
		if !ok {
			return defaultHandle()
		}
		return handlerOf[c](v)
	}

	v, c, err := Select(ctx, order...)
	if err != nil {
		return nil, err
	}
	return handlerOf[c](v)
}
