// Package events delivers product lifecycle events to a Publisher through
// an in-memory queue and a fixed pool of workers. Events for one product
// always go to the same worker, so they are published in emit order.
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
	drainPoll  = 50 * time.Millisecond
	laneBuffer = 16
)

// Metrics is a point-in-time snapshot of dispatcher counters.
type Metrics struct {
	Enqueued  uint64 `json:"enqueued"`
	Processed uint64 `json:"processed"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Backlog   int    `json:"backlog"`
	Depth     int    `json:"depth"`
	Workers   int    `json:"workers"`
}

// Dispatcher implements catalog.EventSink.
type Dispatcher struct {
	q             *Queue
	pub           Publisher
	workers       int
	highWatermark int
	seq           Sequencer
	emitMu        sync.Mutex
	lanes         []chan model.ProductEvent

	cancel context.CancelFunc
	wg     sync.WaitGroup

	published atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher wires q to pub with the given number of workers.
func NewDispatcher(q *Queue, pub Publisher, workers, highWatermark int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{q: q, pub: pub, workers: workers, highWatermark: highWatermark}
}

// Start launches the queue broker, the router and the workers.
func (d *Dispatcher) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.q.Start(ctx, d.highWatermark)
	d.lanes = make([]chan model.ProductEvent, d.workers)
	for i := range d.lanes {
		d.lanes[i] = make(chan model.ProductEvent, laneBuffer)
		d.wg.Add(1)
		go d.worker(ctx, d.lanes[i])
	}
	d.wg.Add(1)
	go d.route(ctx)
	obs.Logger.Info("event_dispatcher_started", "workers", d.workers)
}

// Stop cancels the workers and waits for them to exit.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

// laneFor maps a product key onto one of n workers.
func laneFor(key int64, n int) int {
	l := key % int64(n)
	if l < 0 {
		l = -l
	}
	return int(l)
}

func (d *Dispatcher) route(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.q.Out():
			select {
			case d.lanes[laneFor(ev.ProductKey, len(d.lanes))] <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Dispatcher) worker(ctx context.Context, lane <-chan model.ProductEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-lane:
			if err := d.pub.Publish(ctx, ev); err != nil {
				d.failed.Add(1)
				obs.Logger.Error("event_publish_failed", "error", err, "type", ev.Type, "product_id", ev.ProductKey, "sequence", ev.Sequence)
			} else {
				d.published.Add(1)
			}
			d.q.MarkProcessed()
		}
	}
}

// Emit stamps ev with the next sequence number and enqueues it. The backlog
// holds events in sequence order.
func (d *Dispatcher) Emit(ev model.ProductEvent) bool {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	if d.q.IsShuttingDown() {
		return false
	}
	ev.Sequence = d.seq.Next()
	return d.q.Enqueue(ev)
}

// CloseIntake makes Emit reject further events.
func (d *Dispatcher) CloseIntake() { d.q.CloseIntake() }

// DrainUntil blocks until every accepted event is processed or ctx is done.
func (d *Dispatcher) DrainUntil(ctx context.Context) bool {
	for {
		if d.q.Idle() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(drainPoll):
		}
	}
}

func (d *Dispatcher) Metrics() Metrics {
	return Metrics{
		Enqueued:  d.q.enqueued.Load(),
		Processed: d.q.processed.Load(),
		Published: d.published.Load(),
		Failed:    d.failed.Load(),
		Backlog:   d.q.BacklogSize(),
		Depth:     d.q.Depth(),
		Workers:   d.workers,
	}
}
