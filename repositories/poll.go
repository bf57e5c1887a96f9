//go:generate go run go.uber.org/mock/mockgen -source=poll.go -destination=../mocks/mock_poll_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"poll-lab/domain"

	"github.com/dgraph-io/badger/v4"
)

type IPollRepository interface {
	StorePoll(poll domain.Poll) error
	LoadAllPolls() ([]domain.Poll, error)
	StoreVote(vote domain.Vote) error
	VotesForPoll(poll domain.EventID) ([]domain.Vote, error)
}

// PollRepository persists polls and votes in BadgerDB.
//
// Keys:
//   - "poll:{room_id}:{poll_id}" for poll records
//   - "vote:{poll_id}:{voter_id}" for the latest stored vote per voter
//
// Durability is best effort: a failed write is logged by callers and the
// engine keeps serving from memory, reconciling on the next write or on
// restart from whatever snapshot did land.
type PollRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPollRepository(db *badger.DB, log *slog.Logger) PollRepository {
	return PollRepository{db: db, log: log}
}

type diskPoll struct {
	ID        string        `json:"id"`
	Room      string        `json:"room"`
	Question  string        `json:"question"`
	Options   []diskOption  `json:"options"`
	Kind      string        `json:"kind"`
	State     string        `json:"state"`
	MessageID string        `json:"message_id,omitempty"`
	ClosedBy  string        `json:"closed_by,omitempty"`
	Cancelled bool          `json:"cancelled,omitempty"`
}

type diskOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type diskVote struct {
	Poll       string `json:"poll"`
	Voter      string `json:"voter"`
	Selections []int  `json:"selections"`
	Token      int64  `json:"token"`
	EventID    string `json:"event_id"`
}

func pollKey(room domain.RoomID, poll domain.EventID) []byte {
	return []byte(fmt.Sprintf("poll:%s:%s", room, poll))
}

func voteKey(poll domain.EventID, voter domain.UserID) []byte {
	return []byte(fmt.Sprintf("vote:%s:%s", poll, voter))
}

func (r PollRepository) StorePoll(poll domain.Poll) error {
	bytes, err := json.Marshal(fromPoll(poll))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pollKey(poll.Room, poll.ID), bytes)
	})
}

// LoadAllPolls returns every stored poll, OPEN and CLOSED alike, so
// in-flight polls survive a process restart.
func (r PollRepository) LoadAllPolls() ([]domain.Poll, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("poll:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	polls := make([]domain.Poll, 0, len(raw))
	for _, b := range raw {
		var dp diskPoll
		if err = json.Unmarshal(b, &dp); err != nil {
			return nil, err
		}
		polls = append(polls, toPoll(dp))
	}
	r.log.Debug(fmt.Sprintf("Loaded %d poll(s) from disk", len(polls)))
	return polls, nil
}

// StoreVote upserts the voter's entry for the poll; there is at most one
// stored vote per (poll, voter), matching the live tally invariant.
func (r PollRepository) StoreVote(vote domain.Vote) error {
	bytes, err := json.Marshal(fromVote(vote))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(voteKey(vote.Poll, vote.Voter), bytes)
	})
}

// VotesForPoll returns the stored votes for one poll ordered by token,
// ready to be replayed into a fresh tally.
func (r PollRepository) VotesForPoll(poll domain.EventID) ([]domain.Vote, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("vote:%s:", poll))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	votes := make([]domain.Vote, 0, len(raw))
	for _, b := range raw {
		var dv diskVote
		if err = json.Unmarshal(b, &dv); err != nil {
			return nil, err
		}
		votes = append(votes, toVote(dv))
	}
	sort.Slice(votes, func(a, b int) bool { return votes[a].Token < votes[b].Token })
	return votes, nil
}

func fromPoll(poll domain.Poll) diskPoll {
	options := make([]diskOption, len(poll.Options))
	for i, opt := range poll.Options {
		options[i] = diskOption{ID: opt.ID, Label: opt.Label}
	}
	return diskPoll{
		ID:        string(poll.ID),
		Room:      string(poll.Room),
		Question:  poll.Question,
		Options:   options,
		Kind:      string(poll.Kind),
		State:     poll.State.String(),
		MessageID: string(poll.MessageID),
		ClosedBy:  string(poll.ClosedBy),
		Cancelled: poll.Cancelled,
	}
}

func toPoll(dp diskPoll) domain.Poll {
	options := make([]domain.Option, len(dp.Options))
	for i, opt := range dp.Options {
		options[i] = domain.Option{ID: opt.ID, Label: opt.Label}
	}
	state := domain.StateOpen
	if dp.State == domain.StateClosed.String() {
		state = domain.StateClosed
	}
	return domain.Poll{
		ID:        domain.EventID(dp.ID),
		Room:      domain.RoomID(dp.Room),
		Question:  dp.Question,
		Options:   options,
		Kind:      domain.PollKind(dp.Kind),
		State:     state,
		MessageID: domain.EventID(dp.MessageID),
		ClosedBy:  domain.EventID(dp.ClosedBy),
		Cancelled: dp.Cancelled,
	}
}

func fromVote(vote domain.Vote) diskVote {
	return diskVote{
		Poll:       string(vote.Poll),
		Voter:      string(vote.Voter),
		Selections: vote.Selections,
		Token:      vote.Token,
		EventID:    string(vote.EventID),
	}
}

func toVote(dv diskVote) domain.Vote {
	return domain.Vote{
		Poll:       domain.EventID(dv.Poll),
		Voter:      domain.UserID(dv.Voter),
		Selections: dv.Selections,
		Token:      dv.Token,
		EventID:    domain.EventID(dv.EventID),
	}
}
