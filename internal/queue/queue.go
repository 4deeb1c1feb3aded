// Package queue serializes outbound calls to a rate-limited upstream. Tasks
// run one at a time in FIFO order with a minimum, jittered delay between
// dispatches that grows exponentially while dispatches keep failing.
package queue

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/metrics"
)

var (
	ErrCleared = errors.New("request queue cleared")
	ErrStopped = errors.New("request queue stopped")
)

type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
	done chan error
}

type Queue struct {
	delay         time.Duration
	jitter        time.Duration
	multiplier    int
	maxFailures   int
	isRateLimited func(error) bool

	mu           sync.Mutex
	pending      []*job
	failures     int
	lastDispatch time.Time
	stopped      bool
	notify       chan struct{}
}

type Option func(*Queue)

func WithDelay(d time.Duration) Option {
	return func(q *Queue) { q.delay = d }
}

func WithJitter(d time.Duration) Option {
	return func(q *Queue) { q.jitter = d }
}

func WithMaxFailures(n int) Option {
	return func(q *Queue) { q.maxFailures = n }
}

func WithBackoffMultiplier(m int) Option {
	return func(q *Queue) { q.multiplier = m }
}

// WithRateLimitCheck marks errors that should pause the queue for an extra
// backoff period before the next dispatch.
func WithRateLimitCheck(fn func(error) bool) Option {
	return func(q *Queue) { q.isRateLimited = fn }
}

func New(opts ...Option) *Queue {
	q := &Queue{
		delay:         5 * time.Second,
		jitter:        time.Second,
		multiplier:    2,
		maxFailures:   3,
		isRateLimited: func(error) bool { return false },
		notify:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.multiplier < 1 {
		q.multiplier = 1
	}
	return q
}

// Do enqueues task and waits for its result. If ctx ends first, Do returns
// ctx.Err() and the task is skipped when it reaches the head of the queue.
// Once the dispatcher has stopped, Do fails with ErrStopped.
func (q *Queue) Do(ctx context.Context, task Task) error {
	j := &job{ctx: ctx, task: task, done: make(chan error, 1)}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ErrStopped
	}
	q.pending = append(q.pending, j)
	metrics.QueueDepth.Set(float64(len(q.pending)))
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit runs fn through q and returns its value.
func Submit[T any](ctx context.Context, q *Queue, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	out := make(chan T, 1)
	err := q.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out <- v
		return nil
	})
	if err != nil {
		return zero, err
	}
	return <-out, nil
}

// Start runs the dispatcher until ctx is done. Pending tasks then fail with
// the context error and later calls to Do fail with ErrStopped.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	q.stopped = false
	q.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			q.stop(ctx.Err())
			return
		case <-q.notify:
		}

		for q.Len() > 0 {
			if err := q.waitTurn(ctx); err != nil {
				q.stop(err)
				return
			}
			j := q.pop()
			if j == nil {
				break
			}
			q.dispatch(ctx, j)
		}
	}
}

// Clear drops every pending task and resets the failure counter.
func (q *Queue) Clear() int {
	q.mu.Lock()
	dropped := q.pending
	q.pending = nil
	q.failures = 0
	metrics.QueueDepth.Set(0)
	metrics.QueueFailures.Set(0)
	q.mu.Unlock()

	for _, j := range dropped {
		j.done <- ErrCleared
	}
	return len(dropped)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) Failures() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failures
}

// baseDelay is delay * multiplier^(failures-1), or delay with no failures.
func (q *Queue) baseDelay(failures int) time.Duration {
	if failures <= 0 {
		return q.delay
	}
	return q.scaled(failures - 1)
}

func (q *Queue) scaled(exp int) time.Duration {
	d := q.delay
	for i := 0; i < exp; i++ {
		d *= time.Duration(q.multiplier)
	}
	return d
}

func (q *Queue) waitTurn(ctx context.Context) error {
	q.mu.Lock()
	base := q.baseDelay(q.failures)
	since := time.Since(q.lastDispatch)
	q.mu.Unlock()

	var jitter time.Duration
	if q.jitter > 0 {
		jitter = rand.N(q.jitter)
	}
	return sleep(ctx, base+jitter-since)
}

func (q *Queue) pop() *job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	j := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	metrics.QueueDepth.Set(float64(len(q.pending)))
	return j
}

func (q *Queue) dispatch(ctx context.Context, j *job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	err := j.task(j.ctx)

	// A caller that gave up is not an upstream failure.
	if err != nil && j.ctx.Err() != nil {
		j.done <- err
		q.markDispatched()
		return
	}

	q.mu.Lock()
	if err == nil {
		q.failures = 0
	} else {
		q.failures = min(q.failures+1, q.maxFailures)
	}
	failures := q.failures
	metrics.QueueFailures.Set(float64(failures))
	q.mu.Unlock()

	j.done <- err

	if err != nil {
		logger.Errorf("request queue task failed: %v", err)
		if q.isRateLimited(err) {
			backoff := q.scaled(failures)
			logger.Warnf("rate limited, waiting %s before next request", backoff)
			_ = sleep(ctx, backoff)
		}
	}
	q.markDispatched()
}

func (q *Queue) markDispatched() {
	q.mu.Lock()
	q.lastDispatch = time.Now()
	q.mu.Unlock()
}

func (q *Queue) stop(err error) {
	q.mu.Lock()
	q.stopped = true
	dropped := q.pending
	q.pending = nil
	metrics.QueueDepth.Set(0)
	q.mu.Unlock()

	for _, j := range dropped {
		j.done <- err
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
