// Package timeline classifies raw room timeline events into the poll
// event types the engine understands. Handles payload validation and
// deduplication. Does not mutate polls or interact with the transport.
package timeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"poll-lab/domain"
	"poll-lab/domain/event"
	"poll-lab/errors"

	"github.com/go-playground/validator/v10"
)

// Recognized timeline event types. Everything else passes through to
// external handling untouched.
const (
	TypePollStart    = "m.poll.start"
	TypePollResponse = "m.poll.response"
	TypePollEnd      = "m.poll.end"
	TypeRedaction    = "m.room.redaction"
)

// MaxOptions bounds the option list of a single poll.
const MaxOptions = 20

// RawEvent is one event as delivered by the transport collaborator:
// a type tag, a unique id, envelope fields and an opaque payload.
// Position is the event's index in the room's authoritative timeline.
type RawEvent struct {
	Type     string          `json:"type"`
	ID       domain.EventID  `json:"event_id"`
	Room     domain.RoomID   `json:"room_id"`
	Sender   domain.UserID   `json:"sender"`
	Position int64           `json:"position"`
	Payload  json.RawMessage `json:"payload"`
}

type startPayload struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"required,min=2,max=20,unique,dive,required"`
	Kind     string   `json:"kind" validate:"omitempty,oneof=disclosed undisclosed"`
}

type responsePayload struct {
	Poll       string `json:"poll_id" validate:"required"`
	Selections []int  `json:"selections"`
}

type endPayload struct {
	Poll string `json:"poll_id" validate:"required"`
}

type redactionPayload struct {
	Redacts string `json:"redacts" validate:"required"`
}

// Filter turns raw timeline events into typed poll events and drops
// redeliveries. The transport may deliver an event more than once; a
// repeat is a silent no-op, not an error worth surfacing upstream.
type Filter struct {
	log      *slog.Logger
	validate *validator.Validate

	mu   sync.Mutex
	seen map[domain.EventID]struct{}
	ring []domain.EventID
	next int
}

// NewFilter builds a filter remembering up to dedupeSize recently seen
// event ids, oldest evicted first.
func NewFilter(log *slog.Logger, dedupeSize int) *Filter {
	if dedupeSize <= 0 {
		dedupeSize = 1024
	}
	return &Filter{
		log:      log,
		validate: validator.New(),
		seen:     make(map[domain.EventID]struct{}, dedupeSize),
		ring:     make([]domain.EventID, dedupeSize),
	}
}

// Classify maps a raw event onto the closed set of poll events.
//
// Returns ErrNotPollEvent for types the engine does not own,
// ErrDuplicateEvent for a redelivery, ErrMalformedEvent when a payload
// is missing required fields. None of these warrant a retry.
func (f *Filter) Classify(raw RawEvent) (event.TimelineEvent, error) {
	switch raw.Type {
	case TypePollStart, TypePollResponse, TypePollEnd, TypeRedaction:
	default:
		return nil, errors.ErrNotPollEvent
	}

	if f.markSeen(raw.ID) {
		return nil, errors.ErrDuplicateEvent
	}

	meta := event.Meta{ID: raw.ID, Room: raw.Room, Sender: raw.Sender, Pos: raw.Position}

	switch raw.Type {
	case TypePollStart:
		var payload startPayload
		if err := f.decode(raw.Payload, &payload); err != nil {
			return nil, err
		}
		if len(payload.Options) > MaxOptions {
			return nil, fmt.Errorf("%w: more than %d options", errors.ErrMalformedEvent, MaxOptions)
		}
		kind := domain.PollKind(payload.Kind)
		if kind == "" {
			kind = domain.KindDisclosed
		}
		options := make([]domain.Option, len(payload.Options))
		for i, label := range payload.Options {
			options[i] = domain.Option{ID: strconv.Itoa(i), Label: label}
		}
		return event.PollStarted{Meta: meta, Question: payload.Question, Options: options, Kind: kind}, nil

	case TypePollResponse:
		var payload responsePayload
		if err := f.decode(raw.Payload, &payload); err != nil {
			return nil, err
		}
		return event.VoteCast{Meta: meta, Poll: domain.EventID(payload.Poll), Selections: payload.Selections}, nil

	case TypePollEnd:
		var payload endPayload
		if err := f.decode(raw.Payload, &payload); err != nil {
			return nil, err
		}
		return event.PollEnded{Meta: meta, Poll: domain.EventID(payload.Poll)}, nil

	default: // TypeRedaction
		var payload redactionPayload
		if err := f.decode(raw.Payload, &payload); err != nil {
			return nil, err
		}
		return event.PollRedacted{Meta: meta, Poll: domain.EventID(payload.Redacts)}, nil
	}
}

func (f *Filter) decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", errors.ErrMalformedEvent)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	if err := f.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	return nil
}

// markSeen records an event id and reports whether it was already known.
func (f *Filter) markSeen(id domain.EventID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[id]; ok {
		return true
	}
	if evicted := f.ring[f.next]; evicted != "" {
		delete(f.seen, evicted)
	}
	f.ring[f.next] = id
	f.next = (f.next + 1) % len(f.ring)
	f.seen[id] = struct{}{}
	return false
}
