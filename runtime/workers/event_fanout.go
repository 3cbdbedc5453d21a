package workers

import (
	"classroom-lab/contract"
	"classroom-lab/domain/event"
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventFanout hands broadcast events to the permanent sinks (journal, search index).
//
// It provides best-effort fan-out with no guarantees regarding delivery or retries.
// Room members are served synchronously by the dispatcher; EventFanout only
// carries side effects, never core classroom logic.
type EventFanout struct {
	log          *slog.Logger
	domainEvents chan event.DomainEvent
	sinks        []contract.EventSink
	sinkTimeout  time.Duration
}

func NewEventFanout(log *slog.Logger, domainEvents chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, domainEvents: domainEvents, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvents:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping domain event fanout")
			return nil
		}
	}
}

// Fanout gives each sink its own deadline, a slow sink never delays the others.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	var wg sync.WaitGroup
	for _, sink := range w.sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := s.Consume(sinkCtx, evt); err != nil {
				w.log.Debug("Sink failed to consume event", "event", evt.Name(), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}
