package lifecycle

import (
	"log/slog"
	"testing"
	"time"

	"poll-lab/domain"
	"poll-lab/errors"
	"poll-lab/mocks"
	"poll-lab/msgsync"
	"poll-lab/registry"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newController(t *testing.T) (*Controller, *registry.Registry) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIPollRepository(ctrl)
	repo.EXPECT().StorePoll(gomock.Any()).Return(nil).AnyTimes()
	repo.EXPECT().StoreVote(gomock.Any()).Return(nil).AnyTimes()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	reg := registry.New(repo, log)
	// The syncer is not running here; notifications just queue up.
	syncer := msgsync.NewSyncer(log, reg, mocks.NewMockMessenger(ctrl), time.Millisecond, 1, time.Millisecond)
	return NewController(log, reg, syncer), reg
}

func openPoll(t *testing.T, reg *registry.Registry) {
	require.NoError(t, reg.Create(domain.NewPoll("$poll", "!room", "Lunch?", []domain.Option{
		{ID: "0", Label: "Pizza"},
		{ID: "1", Label: "Sushi"},
	}, domain.KindDisclosed)))
}

func Test_CloseByEnd_Freezes_The_Poll(t *testing.T) {
	req := require.New(t)
	c, reg := newController(t)
	openPoll(t, reg)

	req.NoError(c.CloseByEnd("$poll", "$end"))

	poll, _ := reg.Get("$poll")
	req.True(poll.Closed())
	req.False(poll.Cancelled)
	req.Equal(domain.EventID("$end"), poll.ClosedBy)

	_, err := reg.ApplyVote(domain.Vote{Poll: "$poll", Voter: "@late", Selections: []int{0}, Token: 99, EventID: "$late"})
	req.ErrorIs(err, errors.ErrPollClosed)
}

func Test_CloseByRedaction_Cancels_The_Poll(t *testing.T) {
	req := require.New(t)
	c, reg := newController(t)
	openPoll(t, reg)

	req.NoError(c.CloseByRedaction("$poll", "$redaction"))

	poll, _ := reg.Get("$poll")
	req.True(poll.Closed())
	req.True(poll.Cancelled)
}

func Test_Second_Close_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	c, reg := newController(t)
	openPoll(t, reg)

	req.NoError(c.CloseByEnd("$poll", "$end"))
	req.NoError(c.CloseByRedaction("$poll", "$redaction"))

	poll, _ := reg.Get("$poll")
	req.Equal(domain.EventID("$end"), poll.ClosedBy, "first trigger wins")
	req.False(poll.Cancelled)
}

func Test_Close_Unknown_Poll(t *testing.T) {
	req := require.New(t)
	c, _ := newController(t)

	req.ErrorIs(c.CloseByEnd("$missing", "$end"), errors.ErrUnknownPoll)
	req.ErrorIs(c.CloseByRedaction("$missing", "$redaction"), errors.ErrUnknownPoll)
}
