// Package runtime wires event intake to the per-room pipeline. It owns
// one ordered queue per room and a dedicated worker per queue, so events
// are never reordered within a room while rooms progress independently.
// It orchestrates; poll rules live in domain, registry and lifecycle.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"poll-lab/contract"
	"poll-lab/domain"
	"poll-lab/domain/event"
	"poll-lab/lifecycle"
	"poll-lab/msgsync"
	"poll-lab/registry"
	"poll-lab/runtime/workers"
	"poll-lab/timeline"
)

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   *registry.Registry
	syncer     *msgsync.Syncer
	lifecycle  *lifecycle.Controller
	filter     *timeline.Filter

	bufferSize int
	rooms      map[domain.RoomID]chan timeline.RawEvent
	applied    chan event.TimelineEvent
	sinks      []contract.EventSink

	ctx     context.Context
	started bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, reg *registry.Registry,
	syncer *msgsync.Syncer, lc *lifecycle.Controller, filter *timeline.Filter,
	bufferSize int) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   reg,
		syncer:     syncer,
		lifecycle:  lc,
		filter:     filter,
		bufferSize: bufferSize,
		rooms:      make(map[domain.RoomID]chan timeline.RawEvent),
		applied:    make(chan event.TimelineEvent, bufferSize),
	}
}

// Add registers observer sinks. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.sinks = append(o.sinks, sinks...)
}

// Start loads the registry from disk and brings up the supervised
// workers. Room workers are added lazily as rooms appear; the syncer and
// the fanout are permanent.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return fmt.Errorf("orchestrator already started")
	}

	if err := o.registry.Load(); err != nil {
		return fmt.Errorf("registry load: %w", err)
	}

	o.supervisor.Add(o.syncer)
	o.supervisor.Add(workers.NewEventFanout(o.log, o.applied, time.Second, o.sinks...))

	o.ctx = ctx
	o.started = true

	go o.supervisor.Run(ctx)
	o.log.Info("Orchestrator started")
	return nil
}

// Dispatch hands a raw timeline event to its room's queue, creating the
// room worker on first sight. Blocks only if the room's queue is full:
// backpressure instead of reordering.
func (o *Orchestrator) Dispatch(ctx context.Context, raw timeline.RawEvent) error {
	queue, err := o.roomQueue(raw.Room)
	if err != nil {
		return err
	}
	select {
	case queue <- raw:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Replay feeds historical events through the normal pipeline in order.
// The filter's dedup keeps replay idempotent against live delivery.
func (o *Orchestrator) Replay(ctx context.Context, events []timeline.RawEvent) error {
	for _, raw := range events {
		if err := o.Dispatch(ctx, raw); err != nil {
			return err
		}
	}
	return nil
}

// Backfill reconstructs a poll from room history (the transport keeps it)
// and replays everything related to it.
func (o *Orchestrator) Backfill(ctx context.Context, src timeline.HistorySource,
	room domain.RoomID, poll domain.EventID) error {
	events, err := timeline.CollectPoll(ctx, src, room, poll)
	if err != nil {
		return err
	}
	o.log.Info(fmt.Sprintf("Backfilling %d event(s)", len(events)), "poll", poll, "room", room)
	return o.Replay(ctx, events)
}

// AbandonRoom freezes every poll in the room and drops its queue. Poll
// records stay in the registry and the store for audit.
func (o *Orchestrator) AbandonRoom(room domain.RoomID) {
	o.registry.AbandonRoom(room)
	o.mu.Lock()
	delete(o.rooms, room)
	o.mu.Unlock()
}

// Stop cancels supervision; workers drain and exit via their context.
func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
	o.log.Info("Orchestrator stopped")
}

func (o *Orchestrator) roomQueue(room domain.RoomID) (chan timeline.RawEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		return nil, fmt.Errorf("orchestrator not started")
	}
	queue, ok := o.rooms[room]
	if !ok {
		queue = make(chan timeline.RawEvent, o.bufferSize)
		o.rooms[room] = queue
		worker := workers.NewRoomWorker(room, queue, o.filter, o.registry, o.syncer,
			o.lifecycle, o.applied, o.log)
		o.supervisor.Start(o.ctx, worker)
		o.log.Debug("Room worker started", "room", room)
	}
	return queue, nil
}
