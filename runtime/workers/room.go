package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"

	"poll-lab/domain"
	"poll-lab/domain/event"
	"poll-lab/errors"
	"poll-lab/lifecycle"
	"poll-lab/msgsync"
	"poll-lab/registry"
	"poll-lab/timeline"

	"github.com/samber/lo"
)

// RoomWorker consumes one room's ordered event queue. A single goroutine
// per room keeps in-room order intact while other rooms progress
// concurrently; it never blocks on the transport, only the msgsync
// editors do.
type RoomWorker struct {
	room      domain.RoomID
	events    chan timeline.RawEvent
	filter    *timeline.Filter
	registry  *registry.Registry
	syncer    *msgsync.Syncer
	lifecycle *lifecycle.Controller
	applied   chan event.TimelineEvent
	log       *slog.Logger
}

func NewRoomWorker(room domain.RoomID, events chan timeline.RawEvent, filter *timeline.Filter,
	reg *registry.Registry, syncer *msgsync.Syncer, lc *lifecycle.Controller,
	applied chan event.TimelineEvent, log *slog.Logger) *RoomWorker {
	return &RoomWorker{
		room:      room,
		events:    events,
		filter:    filter,
		registry:  reg,
		syncer:    syncer,
		lifecycle: lc,
		applied:   applied,
		log:       log,
	}
}

func (w *RoomWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker", "room", w.room)
			return nil
		case raw, ok := <-w.events:
			if !ok {
				return nil
			}
			w.handle(raw)
		}
	}
}

// handle runs the full pipeline for one raw event: classify, apply,
// notify the syncer, fan the applied event out. Every failure is
// contained to this event; nothing here is fatal to the worker.
func (w *RoomWorker) handle(raw timeline.RawEvent) {
	evt, err := w.filter.Classify(raw)
	switch {
	case stderrors.Is(err, errors.ErrNotPollEvent):
		// Not ours; external handling owns it.
		return
	case stderrors.Is(err, errors.ErrDuplicateEvent):
		w.log.Debug("Dropping redelivered event", "event", raw.ID, "room", w.room)
		return
	case stderrors.Is(err, errors.ErrMalformedEvent):
		w.log.Warn("Skipping malformed poll event", "event", raw.ID, "room", w.room, "error", err)
		return
	case err != nil:
		w.log.Warn("Unable to classify event", "event", raw.ID, "room", w.room, "error", err)
		return
	}

	switch e := evt.(type) {
	case event.PollStarted:
		w.handleStart(e)
	case event.VoteCast:
		w.handleVote(e)
	case event.PollEnded:
		w.handleEnd(e)
	case event.PollRedacted:
		w.handleRedaction(e)
	}

	select {
	case w.applied <- evt:
	default:
		w.log.Debug("Observer channel full, event not fanned out", "event", raw.ID)
	}
}

func (w *RoomWorker) handleStart(e event.PollStarted) {
	poll := domain.NewPoll(e.ID, e.Room, e.Question, e.Options, e.Kind)
	err := w.registry.Create(poll)
	if stderrors.Is(err, errors.ErrDuplicatePoll) {
		w.log.Debug("Poll already registered", "poll", e.ID)
		return
	}
	if err != nil {
		w.log.Warn("Unable to register poll", "poll", e.ID, "error", err)
		return
	}
	w.log.Info("Poll opened", "poll", e.ID, "room", e.Room, "question", e.Question)
	// First notification creates the summary message.
	w.syncer.Notify(poll.ID)
}

func (w *RoomWorker) handleVote(e event.VoteCast) {
	vote := domain.Vote{
		Poll:       e.Poll,
		Voter:      e.Sender,
		Selections: normalize(e.Selections),
		Token:      e.Pos,
		EventID:    e.ID,
	}

	delta, err := w.registry.ApplyVote(vote)
	switch {
	case stderrors.Is(err, errors.ErrPollClosed):
		w.log.Info("Vote rejected, poll closed", "poll", e.Poll, "voter", e.Sender)
		return
	case stderrors.Is(err, errors.ErrUnknownPoll):
		w.log.Debug("Vote for unknown poll", "poll", e.Poll, "voter", e.Sender)
		return
	case stderrors.Is(err, errors.ErrRoomAbandoned):
		w.log.Debug("Vote for abandoned room", "poll", e.Poll, "room", w.room)
		return
	case stderrors.Is(err, errors.ErrMalformedEvent):
		w.log.Warn("Vote with invalid selection", "poll", e.Poll, "voter", e.Sender, "error", err)
		return
	case err != nil:
		w.log.Warn("Unable to apply vote", "poll", e.Poll, "voter", e.Sender, "error", err)
		return
	}

	if delta.Changed() {
		w.syncer.Notify(e.Poll)
	}
}

func (w *RoomWorker) handleEnd(e event.PollEnded) {
	if err := w.lifecycle.CloseByEnd(e.Poll, e.ID); err != nil {
		w.log.Debug("Close skipped", "poll", e.Poll, "error", err)
	}
}

func (w *RoomWorker) handleRedaction(e event.PollRedacted) {
	err := w.lifecycle.CloseByRedaction(e.Poll, e.ID)
	if stderrors.Is(err, errors.ErrUnknownPoll) {
		// Redaction of something that was never a poll start; not ours.
		return
	}
	if err != nil {
		w.log.Debug("Redaction close skipped", "poll", e.Poll, "error", err)
	}
}

// normalize dedupes and orders selections so equivalent votes compare equal.
func normalize(selections []int) []int {
	if len(selections) == 0 {
		return nil
	}
	out := lo.Uniq(selections)
	sort.Ints(out)
	return out
}
