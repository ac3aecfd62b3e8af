package resource

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vovakirdan/topdown/internal/core"
)

// Callback receives the outcome of an asynchronous load on the owning goroutine.
type Callback func(h core.Handle, err error)

type result struct {
	path string
	kind Kind
	pl   payload
	err  error
	cb   Callback
}

// Loader reads and decodes assets on background goroutines and hands the
// decoded payloads back to the Manager in Pump. Uploads and handle table
// changes only ever happen inside Pump.
type Loader struct {
	m      *Manager
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	mu      sync.Mutex
	ready   []result
	pending int
}

// NewLoader creates a loader running at most workers decodes at a time.
// Cancelling ctx or calling Close stops it.
func NewLoader(ctx context.Context, m *Manager, workers int) *Loader {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Loader{
		m:      m,
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

// Request schedules a load. If the asset is already resident the callback
// still runs from the next Pump, with an added reference.
func (l *Loader) Request(p string, kind Kind, cb Callback) {
	p = cleanPath(p)
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.sem.Acquire(l.ctx, 1); err != nil {
			l.push(result{path: p, kind: kind, err: err, cb: cb})
			return
		}
		defer l.sem.Release(1)

		if err := l.ctx.Err(); err != nil {
			l.push(result{path: p, kind: kind, err: err, cb: cb})
			return
		}
		pl, err := read(l.m.fsys, p, kind)
		l.push(result{path: p, kind: kind, pl: pl, err: err, cb: cb})
	}()
}

func (l *Loader) push(r result) {
	l.mu.Lock()
	l.ready = append(l.ready, r)
	l.mu.Unlock()
}

// Pump installs every finished load and runs its callback. Call it once per
// frame from the goroutine that owns the Manager. After cancellation finished
// loads are discarded and callbacks receive the context error.
func (l *Loader) Pump() int {
	l.mu.Lock()
	batch := l.ready
	l.ready = nil
	l.pending -= len(batch)
	l.mu.Unlock()

	cancelled := l.ctx.Err()
	for _, r := range batch {
		var h core.Handle
		err := r.err
		switch {
		case err != nil:
		case cancelled != nil:
			err = cancelled
		default:
			h, err = l.m.install(r.path, r.kind, r.pl)
		}
		if r.cb != nil {
			r.cb(h, err)
		}
	}
	return len(batch)
}

// Pending returns the number of requests whose callback has not run yet.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Wait blocks until every worker has finished decoding. Results still need Pump.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels outstanding work, waits for the workers and reports the
// abandoned requests to their callbacks.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
	l.Pump()
}
