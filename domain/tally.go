// Package domain contains core concepts of the poll engine.
// This file defines the Tally and its convergence rules.
package domain

import "slices"

// DeltaKind classifies the visible effect of applying a vote.
type DeltaKind int

const (
	DeltaNone DeltaKind = iota
	DeltaAdded
	DeltaChanged
	DeltaRemoved
)

// Delta describes what a single vote application changed, so callers can
// skip re-rendering when nothing visible moved.
type Delta struct {
	Voter UserID
	Kind  DeltaKind
}

func (d Delta) Changed() bool {
	return d.Kind != DeltaNone
}

// Tally is the derived mapping from voter to their latest vote on one poll.
// It holds at most one live vote per voter and converges to the same state
// for any delivery order of the same vote set, as long as tokens compare.
//
// A retraction stays in the map with empty selections: its token still has
// to fence out older votes that arrive late.
type Tally struct {
	votes map[UserID]Vote
	order []UserID // first-seen voter order, drives voter listing in renders
}

func NewTally() *Tally {
	return &Tally{votes: make(map[UserID]Vote)}
}

// Apply inserts or replaces the voter's entry.
//
// A vote whose token is older than the stored one is ignored: it is a late
// out-of-order arrival, not new information. Equal tokens replace, so the
// most recently applied vote wins.
func (t *Tally) Apply(vote Vote) Delta {
	delta := Delta{Voter: vote.Voter}

	current, seen := t.votes[vote.Voter]
	if seen && vote.Token < current.Token {
		return delta
	}
	if seen && vote.EventID == current.EventID {
		// Redelivery of the exact event already applied.
		return delta
	}
	if !seen {
		t.order = append(t.order, vote.Voter)
	}
	t.votes[vote.Voter] = vote

	switch {
	case (!seen || current.Retracted()) && !vote.Retracted():
		delta.Kind = DeltaAdded
	case seen && !current.Retracted() && vote.Retracted():
		delta.Kind = DeltaRemoved
	case !vote.Retracted() && !slices.Equal(current.Selections, vote.Selections):
		delta.Kind = DeltaChanged
	}
	return delta
}

// Vote returns the stored vote for a participant, if any.
func (t *Tally) Vote(voter UserID) (Vote, bool) {
	v, ok := t.votes[voter]
	return v, ok
}

// Voters lists participants with a live, non-retracted selection in the
// order they first voted.
func (t *Tally) Voters() []UserID {
	var voters []UserID
	for _, voter := range t.order {
		if !t.votes[voter].Retracted() {
			voters = append(voters, voter)
		}
	}
	return voters
}

// VotersFor lists participants currently selecting the given option index,
// in first-vote order.
func (t *Tally) VotersFor(option int) []UserID {
	var voters []UserID
	for _, voter := range t.order {
		if slices.Contains(t.votes[voter].Selections, option) {
			voters = append(voters, voter)
		}
	}
	return voters
}

// Count returns the number of live selections for the given option index.
func (t *Tally) Count(option int) int {
	return len(t.VotersFor(option))
}

// Participants returns the number of voters with a live selection.
func (t *Tally) Participants() int {
	return len(t.Voters())
}
