package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
	"github.com/fairyhunter13/storefront-catalog-service/internal/obs"
)

const (
	defaultOutBuffer = 64
	brokerTick       = 50 * time.Millisecond
)

// Queue is an unbounded backlog of product events feeding a bounded output
// channel. Enqueue never blocks; a broker goroutine moves events from the
// backlog to the output channel as workers free up room.
type Queue struct {
	mu           sync.Mutex
	backlog      []model.ProductEvent
	notify       chan struct{}
	out          chan model.ProductEvent
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// NewQueue creates a Queue whose output channel holds outBuffer events.
func NewQueue(outBuffer int) *Queue {
	if outBuffer <= 0 {
		outBuffer = defaultOutBuffer
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan model.ProductEvent, outBuffer),
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(brokerTick)
	defer ticker.Stop()
	warned := false
	for {
		q.flushOnce()
		if highWatermark > 0 {
			sz := q.BacklogSize()
			switch {
			case sz > highWatermark && !warned:
				obs.Logger.Warn("event_backlog_high", "backlog_size", sz, "high_watermark", highWatermark)
				warned = true
			case sz <= highWatermark:
				warned = false
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.backlog) && len(q.out) < cap(q.out) {
		q.out <- q.backlog[n]
		n++
	}
	if n > 0 {
		clear(q.backlog[:n])
		q.backlog = q.backlog[n:]
	}
}

// Enqueue appends ev to the backlog. It returns false once intake is closed.
func (q *Queue) Enqueue(ev model.ProductEvent) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, ev)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) Out() <-chan model.ProductEvent { return q.out }

// BacklogSize returns the number of events not yet moved to the output channel.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Depth returns backlog plus buffered output events.
func (q *Queue) Depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// Idle reports whether every enqueued event has been processed.
func (q *Queue) Idle() bool {
	return q.Depth() == 0 && q.enqueued.Load() == q.processed.Load()
}

// CloseIntake rejects all future enqueues.
func (q *Queue) CloseIntake() { q.shuttingDown.Store(true) }

func (q *Queue) IsShuttingDown() bool { return q.shuttingDown.Load() }
