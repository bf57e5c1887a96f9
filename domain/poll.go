// Package domain contains core concepts of the poll engine.
// This file defines Poll entities and their lifecycle invariants.
// No runtime, network, or UI logic should be added here.
package domain

// RoomID identifies a chat room on the transport side.
type RoomID string

// EventID identifies a single timeline event. Polls are keyed by the
// event id of their start event.
type EventID string

// UserID identifies a room participant.
type UserID string

// PollState is the lifecycle state of a poll. The only transition is
// StateOpen -> StateClosed, never back.
type PollState int

const (
	StateOpen PollState = iota
	StateClosed
)

func (s PollState) String() string {
	if s == StateClosed {
		return "CLOSED"
	}
	return "OPEN"
}

// PollKind distinguishes polls whose running results are visible while
// voting is ongoing (disclosed) from polls that only reveal who voted
// until they close (undisclosed).
type PollKind string

const (
	KindDisclosed   PollKind = "disclosed"
	KindUndisclosed PollKind = "undisclosed"
)

// Option is a single answer a participant can select.
type Option struct {
	ID    string
	Label string
}

// Poll is a voting question scoped to one room. The option list is
// immutable after creation.
type Poll struct {
	ID       EventID
	Room     RoomID
	Question string
	Options  []Option
	Kind     PollKind
	State    PollState

	// MessageID is the summary message kept in sync with the tally.
	// Empty until the first render has been sent.
	MessageID EventID
	// ClosedBy is the event that closed the poll (end event or redaction).
	ClosedBy EventID
	// Cancelled is set when the poll was closed by redaction of its
	// start event rather than by a proper end event.
	Cancelled bool
}

func NewPoll(id EventID, room RoomID, question string, options []Option, kind PollKind) *Poll {
	return &Poll{
		ID:       id,
		Room:     room,
		Question: question,
		Options:  options,
		Kind:     kind,
		State:    StateOpen,
	}
}

func (p *Poll) Closed() bool {
	return p.State == StateClosed
}

// Close transitions the poll to CLOSED. Closing an already closed poll
// is a no-op and reports false; the first trigger wins.
func (p *Poll) Close(trigger EventID, cancelled bool) bool {
	if p.State == StateClosed {
		return false
	}
	p.State = StateClosed
	p.ClosedBy = trigger
	p.Cancelled = cancelled
	return true
}

// ValidSelections reports whether every index points at an existing option.
func (p *Poll) ValidSelections(indices []int) bool {
	for _, i := range indices {
		if i < 0 || i >= len(p.Options) {
			return false
		}
	}
	return true
}
