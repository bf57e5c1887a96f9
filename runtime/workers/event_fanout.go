package workers

import (
	"context"
	"log/slog"
	"time"

	"poll-lab/contract"
	"poll-lab/domain/event"
)

// EventFanout broadcasts applied poll events to in-process observers.
//
// Best-effort fan-out with no guarantees regarding delivery, ordering,
// durability, or retries. It exists for harnesses, logs and metrics,
// never for core poll logic: the pipeline has already applied the event
// by the time a sink sees it.
type EventFanout struct {
	log         *slog.Logger
	applied     chan event.TimelineEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, applied chan event.TimelineEvent,
	sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{log: log, applied: applied, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.applied:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One sink for each event, each bounded by the sink timeout so a
// stuck observer cannot back up the others.
func (w *EventFanout) Fanout(ctx context.Context, evt event.TimelineEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Sink refused event", "event", evt.EventID(), "error", err)
		}
		cancel()
	}
}
