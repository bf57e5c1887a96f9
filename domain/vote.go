// Package domain contains core concepts of the poll engine.
// This file defines Vote values and the ordering token they carry.
package domain

// Vote is one participant's current selection on a poll.
//
// Token is the event's position in the room's authoritative timeline.
// Conflicts between votes from the same participant are resolved by
// comparing tokens, never wall clocks: participant clocks are not trusted.
type Vote struct {
	Poll       EventID
	Voter      UserID
	Selections []int // option indices; empty means an explicit retraction
	Token      int64
	EventID    EventID
}

// Retracted reports whether this vote withdraws the participant from the
// poll rather than selecting options.
func (v Vote) Retracted() bool {
	return len(v.Selections) == 0
}
