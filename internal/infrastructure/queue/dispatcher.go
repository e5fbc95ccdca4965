package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 32
)

var (
	// ErrQueueFull is returned when every worker is busy and the queue has no
	// free slot.
	ErrQueueFull = errors.New("chat queue is full")
	// ErrStopped is returned once the dispatcher context has been cancelled.
	ErrStopped = errors.New("chat dispatcher stopped")
)

var _ ports.ChatProvider = (*Dispatcher)(nil)

type result struct {
	text string
	err  error
}

type job struct {
	ctx  context.Context
	req  ports.ChatRequest
	done chan result
}

// Dispatcher bounds concurrent upstream chat calls with a fixed set of
// workers consuming a shared job queue. It implements ports.ChatProvider so
// it can wrap any provider transparently.
type Dispatcher struct {
	next    ports.ChatProvider
	jobs    chan job
	workers int
	log     zerolog.Logger

	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher in front of next. Non-positive sizes use
// the defaults.
func NewDispatcher(next ports.ChatProvider, numWorkers, queueSize int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		next:    next,
		jobs:    make(chan job, queueSize),
		workers: numWorkers,
		log:     log.With().Str("component", "chat_dispatcher").Logger(),
		stopped: make(chan struct{}),
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		d.once.Do(func() { close(d.stopped) })
	}()
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Name() string { return d.next.Name() }

// Complete enqueues req and waits for a worker to finish it. It fails fast
// with ErrQueueFull instead of blocking when the queue is saturated; ctx
// bounds the wait for the result.
func (d *Dispatcher) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	select {
	case <-d.stopped:
		return "", ErrStopped
	default:
	}

	j := job{ctx: ctx, req: req, done: make(chan result, 1)}
	metrics.ChatQueueDepth.Inc()
	select {
	case d.jobs <- j:
	default:
		metrics.ChatQueueDepth.Dec()
		d.log.Warn().Int("capacity", cap(d.jobs)).Msg("chat queue full, rejecting request")
		return "", ErrQueueFull
	}

	select {
	case r := <-j.done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-d.stopped:
		return "", ErrStopped
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			metrics.ChatQueueDepth.Dec()
			// The caller may have given up while the job was queued.
			if err := j.ctx.Err(); err != nil {
				j.done <- result{err: err}
				continue
			}
			text, err := d.next.Complete(j.ctx, j.req)
			if err != nil {
				d.log.Debug().Err(err).Int("worker_id", id).Msg("chat job failed")
			}
			j.done <- result{text: text, err: err}
		}
	}
}
