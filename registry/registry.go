// Package registry owns the set of known polls. It is the single access
// path to poll state: every read or mutation goes through a per-poll lock,
// so unrelated polls never contend and one poll never has two writers.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"poll-lab/domain"
	"poll-lab/errors"
	"poll-lab/repositories"

	"github.com/samber/lo"
)

type entry struct {
	mu    sync.Mutex
	poll  *domain.Poll
	tally *domain.Tally
}

type Registry struct {
	mu        sync.RWMutex
	polls     map[domain.EventID]*entry
	abandoned map[domain.RoomID]struct{}
	repo      repositories.IPollRepository
	log       *slog.Logger
}

func New(repo repositories.IPollRepository, log *slog.Logger) *Registry {
	return &Registry{
		polls:     make(map[domain.EventID]*entry),
		abandoned: make(map[domain.RoomID]struct{}),
		repo:      repo,
		log:       log,
	}
}

// Load pulls every stored poll (OPEN and CLOSED) from the durable store
// and rebuilds each tally by replaying its stored votes in token order.
// Called once at startup, before any event is processed.
func (r *Registry) Load() error {
	polls, err := r.repo.LoadAllPolls()
	if err != nil {
		return fmt.Errorf("loading polls: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, poll := range polls {
		votes, err := r.repo.VotesForPoll(poll.ID)
		if err != nil {
			return fmt.Errorf("loading votes for poll %s: %w", poll.ID, err)
		}
		tally := domain.NewTally()
		for _, vote := range votes {
			tally.Apply(vote)
		}
		p := poll
		r.polls[poll.ID] = &entry{poll: &p, tally: tally}
	}
	r.log.Info(fmt.Sprintf("Registry loaded %d poll(s)", len(r.polls)))
	return nil
}

// Create registers a new poll. A second start event for the same id is
// idempotent input per the filter's dedup contract; signalling
// ErrDuplicatePoll lets the caller drop it without treating it as a fault.
func (r *Registry) Create(poll *domain.Poll) error {
	r.mu.Lock()
	if _, ok := r.polls[poll.ID]; ok {
		r.mu.Unlock()
		return errors.ErrDuplicatePoll
	}
	r.polls[poll.ID] = &entry{poll: poll, tally: domain.NewTally()}
	r.mu.Unlock()

	r.persist(*poll)
	return nil
}

// ApplyVote runs the tally rules for one vote under the poll's lock.
// Closed polls reject with ErrPollClosed and mutate nothing; selections
// outside the option list are ErrMalformedEvent. An accepted vote is
// persisted best effort.
func (r *Registry) ApplyVote(vote domain.Vote) (domain.Delta, error) {
	e, err := r.entry(vote.Poll)
	if err != nil {
		return domain.Delta{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if r.roomAbandoned(e.poll.Room) {
		return domain.Delta{}, errors.ErrRoomAbandoned
	}
	if e.poll.Closed() {
		return domain.Delta{}, errors.ErrPollClosed
	}
	if !e.poll.ValidSelections(vote.Selections) {
		return domain.Delta{}, fmt.Errorf("%w: selection out of range", errors.ErrMalformedEvent)
	}

	delta := e.tally.Apply(vote)

	// Persist only if the tally actually kept this vote; an ignored
	// late arrival must not overwrite the newer stored state either.
	if stored, ok := e.tally.Vote(vote.Voter); ok && stored.EventID == vote.EventID {
		if err := r.repo.StoreVote(vote); err != nil {
			r.log.Warn("Vote persistence failed, serving from memory", "poll", vote.Poll, "error", err)
		}
	}
	return delta, nil
}

// Update runs fn under the poll's lock and persists the poll afterwards.
// Use for mutations outside vote application (close, summary message id).
func (r *Registry) Update(id domain.EventID, fn func(*domain.Poll, *domain.Tally) error) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if r.roomAbandoned(e.poll.Room) {
		return errors.ErrRoomAbandoned
	}
	if err := fn(e.poll, e.tally); err != nil {
		return err
	}
	r.persist(*e.poll)
	return nil
}

// View runs fn under the poll's lock without persisting. fn must not
// retain the pointers past its return.
func (r *Registry) View(id domain.EventID, fn func(*domain.Poll, *domain.Tally) error) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.poll, e.tally)
}

// Get returns a copy of the poll record.
func (r *Registry) Get(id domain.EventID) (domain.Poll, bool) {
	e, err := r.entry(id)
	if err != nil {
		return domain.Poll{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.poll, true
}

// Polls returns copies of every known poll, for inspection surfaces.
func (r *Registry) Polls() []domain.Poll {
	r.mu.RLock()
	entries := lo.Values(r.polls)
	r.mu.RUnlock()

	polls := make([]domain.Poll, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		polls = append(polls, *e.poll)
		e.mu.Unlock()
	}
	return polls
}

// AbandonRoom stops all processing for a room's polls after the bot left
// or was removed. Records stay for audit; they are never deleted here.
func (r *Registry) AbandonRoom(room domain.RoomID) {
	r.mu.Lock()
	r.abandoned[room] = struct{}{}
	r.mu.Unlock()
	r.log.Info("Room abandoned, its polls are frozen", "room", room)
}

func (r *Registry) entry(id domain.EventID) (*entry, error) {
	r.mu.RLock()
	e, ok := r.polls[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrUnknownPoll
	}
	return e, nil
}

func (r *Registry) roomAbandoned(room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.abandoned[room]
	return ok
}

// persist writes the poll record, logging failures instead of failing the
// caller: durability is best effort, the running process keeps serving
// from memory and a later write or restart reconciles.
func (r *Registry) persist(poll domain.Poll) {
	if err := r.repo.StorePoll(poll); err != nil {
		r.log.Warn("Poll persistence failed, serving from memory", "poll", poll.ID, "error", err)
	}
}
