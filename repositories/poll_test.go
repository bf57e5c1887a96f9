package repositories

import (
	"log/slog"
	"testing"

	"poll-lab/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) PollRepository {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPollRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func Test_Store_And_Load_Polls(t *testing.T) {
	req := require.New(t)
	repo := newRepository(t)

	open := *domain.NewPoll("$open", "!room", "Lunch?", []domain.Option{
		{ID: "0", Label: "Pizza"},
		{ID: "1", Label: "Sushi"},
	}, domain.KindDisclosed)
	open.MessageID = "$summary"

	closed := *domain.NewPoll("$closed", "!other", "Snack?", []domain.Option{
		{ID: "0", Label: "Chips"},
		{ID: "1", Label: "Fruit"},
	}, domain.KindUndisclosed)
	closed.Close("$end", true)

	req.NoError(repo.StorePoll(open))
	req.NoError(repo.StorePoll(closed))

	polls, err := repo.LoadAllPolls()
	req.NoError(err)
	req.ElementsMatch([]domain.Poll{open, closed}, polls)
}

func Test_StorePoll_Overwrites_Previous_Record(t *testing.T) {
	req := require.New(t)
	repo := newRepository(t)

	poll := *domain.NewPoll("$poll", "!room", "Lunch?", []domain.Option{
		{ID: "0", Label: "Pizza"},
		{ID: "1", Label: "Sushi"},
	}, domain.KindDisclosed)
	req.NoError(repo.StorePoll(poll))

	poll.Close("$end", false)
	req.NoError(repo.StorePoll(poll))

	polls, err := repo.LoadAllPolls()
	req.NoError(err)
	req.Len(polls, 1)
	req.True(polls[0].Closed())
	req.Equal(domain.EventID("$end"), polls[0].ClosedBy)
}

func Test_StoreVote_Upserts_Per_Voter(t *testing.T) {
	req := require.New(t)
	repo := newRepository(t)

	req.NoError(repo.StoreVote(domain.Vote{Poll: "$poll", Voter: "@alice", Selections: []int{0}, Token: 1, EventID: "$v1"}))
	req.NoError(repo.StoreVote(domain.Vote{Poll: "$poll", Voter: "@alice", Selections: []int{1}, Token: 3, EventID: "$v2"}))

	votes, err := repo.VotesForPoll("$poll")
	req.NoError(err)
	req.Len(votes, 1)
	req.Equal([]int{1}, votes[0].Selections)
	req.Equal(int64(3), votes[0].Token)
}

func Test_VotesForPoll_Sorted_By_Token_And_Scoped(t *testing.T) {
	req := require.New(t)
	repo := newRepository(t)

	req.NoError(repo.StoreVote(domain.Vote{Poll: "$poll", Voter: "@clara", Selections: []int{1}, Token: 7, EventID: "$v3"}))
	req.NoError(repo.StoreVote(domain.Vote{Poll: "$poll", Voter: "@alice", Selections: []int{0}, Token: 2, EventID: "$v1"}))
	req.NoError(repo.StoreVote(domain.Vote{Poll: "$other", Voter: "@bob", Selections: []int{0}, Token: 1, EventID: "$v2"}))

	votes, err := repo.VotesForPoll("$poll")
	req.NoError(err)
	req.Len(votes, 2)
	req.Equal(domain.UserID("@alice"), votes[0].Voter)
	req.Equal(domain.UserID("@clara"), votes[1].Voter)
}

func Test_VotesForPoll_Empty_Store(t *testing.T) {
	req := require.New(t)
	repo := newRepository(t)

	votes, err := repo.VotesForPoll("$missing")
	req.NoError(err)
	req.Empty(votes)
}
