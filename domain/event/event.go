// Package event defines the recognized poll timeline events as a closed
// set of concrete types behind the TimelineEvent interface. Dispatch is
// by type switch, never by inspecting raw payload attributes downstream.
package event

import "poll-lab/domain"

// TimelineEvent is one classified event from a room's ordered timeline.
type TimelineEvent interface {
	RoomID() domain.RoomID
	EventID() domain.EventID
	// Token is the event's position in the room timeline.
	Token() int64
}

// Meta carries the envelope fields shared by every recognized event.
type Meta struct {
	ID     domain.EventID
	Room   domain.RoomID
	Sender domain.UserID
	Pos    int64
}

func (m Meta) RoomID() domain.RoomID   { return m.Room }
func (m Meta) EventID() domain.EventID { return m.ID }
func (m Meta) Token() int64            { return m.Pos }

// PollStarted announces a new poll. Its event id becomes the poll id.
type PollStarted struct {
	Meta
	Question string
	Options  []domain.Option
	Kind     domain.PollKind
}

// VoteCast is a participant's response to an earlier poll start.
// Empty Selections is an explicit retraction.
type VoteCast struct {
	Meta
	Poll       domain.EventID
	Selections []int
}

// PollEnded closes the referenced poll and freezes its result.
type PollEnded struct {
	Meta
	Poll domain.EventID
}

// PollRedacted is the redaction of a poll start event. The poll is no
// longer valid and closes as cancelled.
type PollRedacted struct {
	Meta
	Poll domain.EventID
}
