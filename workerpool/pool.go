// Package workerpool runs blocking work on a fixed set of workers reached by
// message passing.
//
// Each worker owns a resource produced by the pool's factory and handles one
// message at a time to completion. Callers send typed messages and await a
// Future. No ordering is guaranteed between messages, even from one sender.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/go-logr/logr"
)

// Pool errors.
var (
	ErrPoolClosed  = errors.New("worker pool closed")
	ErrQueueFull   = errors.New("worker pool queue full")
	ErrWorkerPanic = errors.New("worker panicked while handling message")
)

// Message is a request handled by a worker owning a resource of type R and
// producing a result of type T.
type Message[R, T any] interface {
	Handle(ctx context.Context, resource R) (T, error)
}

// Factory returns the resource for the worker with the given index.
type Factory[R any] func(worker int) (R, error)

// Option configures a Pool.
type Option func(*settings)

type settings struct {
	queueSize int
	logger    logr.Logger
	metrics   *metrics.PoolMetrics
}

// WithQueueSize bounds the mailbox to n pending messages. Zero, the default,
// leaves it unbounded.
func WithQueueSize(n int) Option {
	return func(s *settings) {
		s.queueSize = n
	}
}

// WithLogger sets the pool logger.
func WithLogger(l logr.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithMetrics enables pool metrics.
func WithMetrics(m *metrics.PoolMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// envelope is a queued message bound to its future.
type envelope[R any] struct {
	kind string
	run  func(ctx context.Context, resource R) error
}

// Pool is a fixed-size set of workers sharing one mailbox.
type Pool[R any] struct {
	name     string
	size     int
	settings settings

	mu      sync.Mutex
	cond    *sync.Cond
	mailbox []envelope[R]
	closed  bool

	// base is handed to handlers. It is never cancelled by callers, so a
	// dispatched message always runs to completion.
	base context.Context
	wg   sync.WaitGroup
}

// New starts size workers, calling factory once per worker for its resource.
// If any factory call fails, no workers are started.
func New[R any](name string, size int, factory Factory[R], opts ...Option) (*Pool[R], error) {
	if size <= 0 {
		return nil, fmt.Errorf("worker pool %s: size must be positive, got %d", name, size)
	}

	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.queueSize < 0 {
		return nil, fmt.Errorf("worker pool %s: queue size must not be negative", name)
	}

	p := &Pool[R]{
		name:     name,
		size:     size,
		settings: s,
		base:     context.Background(),
	}
	p.cond = sync.NewCond(&p.mu)

	resources := make([]R, size)
	for w := 0; w < size; w++ {
		r, err := factory(w)
		if err != nil {
			return nil, fmt.Errorf("worker pool %s: creating resource for worker %d: %w", name, w, err)
		}
		resources[w] = r
	}

	for w, r := range resources {
		p.wg.Add(1)
		go p.work(w, r)
	}

	p.settings.metrics.SetSize(name, size)
	p.settings.logger.Info("worker pool started", "pool", name, "workers", size, "queueSize", s.queueSize)
	return p, nil
}

// Name returns the pool name.
func (p *Pool[R]) Name() string {
	return p.name
}

// Size returns the number of workers.
func (p *Pool[R]) Size() int {
	return p.size
}

// Pending returns the number of queued, not yet started messages.
func (p *Pool[R]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mailbox)
}

// Close stops accepting messages, lets the workers drain the mailbox and waits
// for them to exit.
func (p *Pool[R]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.settings.logger.Info("worker pool stopped", "pool", p.name)
}

// Send enqueues msg on p and returns a Future for its result.
func Send[R, T any](p *Pool[R], msg Message[R, T]) (*Future[T], error) {
	f := newFuture[T]()
	env := envelope[R]{
		kind: messageKind(msg),
		run: func(ctx context.Context, resource R) error {
			val, err := msg.Handle(ctx, resource)
			f.complete(val, err)
			return err
		},
	}

	if err := p.enqueue(env, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Ask sends msg and waits for its result. If ctx ends first, Ask returns
// ctx.Err() while the message still runs to completion on its worker.
func Ask[R, T any](ctx context.Context, p *Pool[R], msg Message[R, T]) (T, error) {
	f, err := Send(p, msg)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.Await(ctx)
}

func (p *Pool[R]) enqueue(env envelope[R], f interface{ fail(error) }) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	if p.settings.queueSize > 0 && len(p.mailbox) >= p.settings.queueSize {
		return ErrQueueFull
	}

	// Panics inside run are recovered by the worker, which reports them here.
	inner := env.run
	env.run = func(ctx context.Context, resource R) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
				f.fail(err)
			}
		}()
		return inner(ctx, resource)
	}

	p.mailbox = append(p.mailbox, env)
	p.settings.metrics.SetQueueDepth(p.name, len(p.mailbox))
	p.cond.Signal()
	return nil
}

// next blocks until a message is available or the pool is closed and drained.
func (p *Pool[R]) next() (envelope[R], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.mailbox) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.mailbox) == 0 {
		return envelope[R]{}, false
	}

	env := p.mailbox[0]
	p.mailbox[0] = envelope[R]{}
	p.mailbox = p.mailbox[1:]
	p.settings.metrics.SetQueueDepth(p.name, len(p.mailbox))
	return env, true
}

func (p *Pool[R]) work(id int, resource R) {
	defer p.wg.Done()

	for {
		env, ok := p.next()
		if !ok {
			return
		}

		p.settings.metrics.WorkerBusy(p.name, 1)
		start := time.Now()
		err := env.run(p.base, resource)
		elapsed := time.Since(start)
		p.settings.metrics.WorkerBusy(p.name, -1)

		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, ErrWorkerPanic) {
				outcome = "panic"
				p.settings.logger.Error(err, "recovered worker panic", "pool", p.name, "worker", id, "message", env.kind)
			}
		}
		p.settings.metrics.Handled(p.name, env.kind, outcome, elapsed)
	}
}

// messageKind names a message by its type, without package path or type arguments.
func messageKind(msg any) string {
	kind := fmt.Sprintf("%T", msg)
	if i := strings.IndexByte(kind, '['); i >= 0 {
		kind = kind[:i]
	}
	kind = strings.TrimPrefix(kind, "*")
	if i := strings.LastIndexByte(kind, '.'); i >= 0 {
		kind = kind[i+1:]
	}
	return kind
}
