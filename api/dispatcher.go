/*
dispatcher.go - Background event publishing

PURPOSE:
  Handlers enqueue events and return; a single goroutine drains the queue
  into the configured events.Publisher. A slow or unreachable broker never
  adds latency to a projection request.

DESIGN:
  - Buffered queue (default 256); when full, the event is dropped and logged
  - Each publish gets its own timeout (default 5s)
  - Stop() drains what is already queued, then returns

USAGE:
  dispatcher := NewEventDispatcher(publisher, logger)
  dispatcher.Start()
  defer dispatcher.Stop()

SEE ALSO:
  - events/events.go: Publisher implementations
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/debt-engine/events"
)

// EventDispatcher publishes events asynchronously.
type EventDispatcher struct {
	Publisher      events.Publisher
	PublishTimeout time.Duration
	Logger         zerolog.Logger

	queue   chan events.Event
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewEventDispatcher creates a dispatcher with a 256-event queue.
func NewEventDispatcher(publisher events.Publisher, logger zerolog.Logger) *EventDispatcher {
	return &EventDispatcher{
		Publisher:      publisher,
		PublishTimeout: 5 * time.Second,
		Logger:         logger,
		queue:          make(chan events.Event, 256),
	}
}

// Start begins draining the queue.
func (d *EventDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true
	d.wg.Add(1)
	go d.run()

	d.Logger.Info().Int("queue_size", cap(d.queue)).Msg("event dispatcher started")
}

// Stop publishes everything already queued and stops the worker.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.Logger.Info().Msg("event dispatcher stopped")
}

// Enqueue schedules event for publishing. It never blocks.
func (d *EventDispatcher) Enqueue(event events.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.Logger.Warn().Str("event", event.Type).Str("run_id", event.RunID).Msg("event queue full, dropping event")
		return false
	}
}

func (d *EventDispatcher) run() {
	defer d.wg.Done()

	for event := range d.queue {
		d.publish(event)
	}
}

func (d *EventDispatcher) publish(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.PublishTimeout)
	defer cancel()

	if err := d.Publisher.Publish(ctx, event); err != nil {
		d.Logger.Error().Err(err).Str("event", event.Type).Str("run_id", event.RunID).Msg("failed to publish event")
	}
}
