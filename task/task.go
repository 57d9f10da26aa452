// Package task is the thin goroutine-spawning convenience layer the core
// channel and select packages sit behind: it starts cooperative/parallel
// work, gives callers a handle to cancel it, and keeps a process-wide
// inventory a shutdown routine can sweep in bulk.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle identifies one spawned task and lets its caller request
// cancellation or wait for completion.
type Handle struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// ID returns the task's identity.
func (h *Handle) ID() uuid.UUID { return h.id }

// Cancel asynchronously signals the task to stop. The task observes this at
// its next blocking point (channel operation, sleep, or context check).
func (h *Handle) Cancel() { h.cancel() }

// Done reports when the task has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the task body's error after Done has fired. It blocks until
// then.
func (h *Handle) Err() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) setErr(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Registry is a shared, thread-safe ordered collection of live task handles.
// The package-level functions operate on a single process-wide Registry;
// an embedder that wants to avoid process-wide state can construct its own
// with NewRegistry and call its methods directly instead.
type Registry struct {
	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
}

// NewRegistry creates an empty, independent task inventory.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[uuid.UUID]*Handle)}
}

func (r *Registry) add(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.id] = h
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, id)
}

// Spawn starts body concurrently, records its handle in the registry, and
// returns the handle. The handle is removed from the registry as soon as
// body returns, so StopAll only ever cancels still-running tasks.
func (r *Registry) Spawn(body func(context.Context) error) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{id: uuid.New(), cancel: cancel, done: make(chan struct{})}
	r.add(h)

	go func() {
		defer r.remove(h.id)
		h.setErr(body(ctx))
	}()

	return h
}

// SpawnDetached starts body as an untracked background task: no handle, no
// registry membership. Useful for fire-and-forget work that outlives the
// caller's interest in it.
func (r *Registry) SpawnDetached(body func(context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		body(ctx)
	}()
}

// SpawnLogged is Spawn with an implicit error boundary: an uncaught error is
// logged to diagnostic output, except context.Canceled, which is swallowed
// silently since it's the expected shutdown path for a long-running loop
// cancelled via StopAll/Shutdown.
func (r *Registry) SpawnLogged(body func(context.Context) error) *Handle {
	return r.Spawn(func(ctx context.Context) error {
		err := body(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error().Err(err).Msg("task: spawned task returned an error")
		return err
	})
}

// StopAll signals cancellation to every handle currently in the registry
// and clears it. It returns as soon as every signal has been sent; it does
// not wait for the tasks to actually terminate.
func (r *Registry) StopAll() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.handles = make(map[uuid.UUID]*Handle)
	r.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

// Shutdown stops every tracked task. It exists as a distinct entry point
// from StopAll so an embedder with shared executor infrastructure beyond
// the registry (a worker pool, a metrics exporter) can override it to also
// quiesce that infrastructure; the package-level Shutdown does exactly what
// StopAll does.
func (r *Registry) Shutdown() {
	r.StopAll()
}

// WithTimeout runs body as a task and waits up to d for its result. On
// expiry it signals cancellation and reports ok=false instead of blocking
// indefinitely for a value that may never come.
func (r *Registry) WithTimeout(ctx context.Context, d time.Duration, body func(context.Context) (any, error)) (any, bool) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   any
		err error
	}
	out := make(chan result, 1)
	h := r.Spawn(func(taskCtx context.Context) error {
		v, err := body(taskCtx)
		out <- result{v, err}
		return err
	})

	select {
	case res := <-out:
		return res.v, res.err == nil
	case <-cctx.Done():
		h.Cancel()
		return nil, false
	}
}

// global is the process-wide inventory the package-level functions use.
var global = NewRegistry()

// Spawn starts body on the process-wide registry. See Registry.Spawn.
func Spawn(body func(context.Context) error) *Handle { return global.Spawn(body) }

// SpawnDetached starts an untracked background task. See Registry.SpawnDetached.
func SpawnDetached(body func(context.Context)) { global.SpawnDetached(body) }

// SpawnLogged starts body with an implicit error boundary. See Registry.SpawnLogged.
func SpawnLogged(body func(context.Context) error) *Handle { return global.SpawnLogged(body) }

// StopAll cancels every task on the process-wide registry. See Registry.StopAll.
func StopAll() { global.StopAll() }

// Shutdown quiesces the process-wide registry. See Registry.Shutdown.
func Shutdown() { global.Shutdown() }

// WithTimeout runs body with a deadline on the process-wide registry. See
// Registry.WithTimeout.
func WithTimeout(ctx context.Context, d time.Duration, body func(context.Context) (any, error)) (any, bool) {
	return global.WithTimeout(ctx, d, body)
}
