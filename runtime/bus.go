package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"roomchat/contract"
	"roomchat/domain/event"
	"roomchat/observability"
)

// Bus dispatches domain events to registered listeners. Publish returns
// immediately: every listener owns a buffered channel drained by a
// dedicated supervised worker, so broadcast latency and failures never
// reach the publishing request. Events published in order are handled in
// order per listener; cross-listener interleaving is unordered.
type Bus struct {
	log           *slog.Logger
	bufferSize    int
	metrics       *observability.Metrics
	subscriptions []*subscription
}

type subscription struct {
	name     string
	listener contract.Listener
	events   chan event.DomainEvent
}

func NewBus(log *slog.Logger, bufferSize int, metrics *observability.Metrics) *Bus {
	return &Bus{log: log, bufferSize: bufferSize, metrics: metrics}
}

// Subscribe registers a listener and returns the worker that drains its
// queue. The caller hands the worker to the supervisor; subscribing after
// the supervisor started is not supported.
func (b *Bus) Subscribe(name string, listener contract.Listener) contract.Worker {
	sub := &subscription{
		name:     name,
		listener: listener,
		events:   make(chan event.DomainEvent, b.bufferSize),
	}
	b.subscriptions = append(b.subscriptions, sub)
	return &ListenerWorker{log: b.log, sub: sub, metrics: b.metrics}
}

// Publish hands the event to every listener queue without blocking.
// A full queue drops the event for that listener: delivery is best
// effort and a lost broadcast is recoverable by re-fetching history.
func (b *Bus) Publish(evt event.DomainEvent) {
	for _, sub := range b.subscriptions {
		select {
		case sub.events <- evt:
		default:
			b.log.Warn(fmt.Sprintf("Listener %s queue full for room %d, dropping event", sub.name, evt.RoomID()))
			if b.metrics != nil {
				b.metrics.IncrEventsDropped()
			}
		}
	}
	if b.metrics != nil {
		b.metrics.IncrEventsPublished()
	}
}

// ListenerWorker drains one listener queue sequentially. Errors and
// panics are logged and swallowed: a failed WebSocket push must not fail
// a committed message send.
type ListenerWorker struct {
	log     *slog.Logger
	sub     *subscription
	metrics *observability.Metrics
}

func (w *ListenerWorker) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.sub.events:
			w.handle(ctx, evt)
		case <-ctx.Done():
			w.log.Debug(fmt.Sprintf("Context done, stopping listener %s", w.sub.name))
			return nil
		}
	}
}

func (w *ListenerWorker) handle(ctx context.Context, evt event.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Listener panicked", "name", w.sub.name, "recovered", r)
		}
	}()

	if err := w.sub.listener.Handle(ctx, evt); err != nil {
		w.log.Error("Listener failed", "name", w.sub.name, "room", evt.RoomID(), "error", err)
		if w.metrics != nil {
			w.metrics.IncrBroadcastFailures()
		}
	}
}
