package timeline

import (
	"context"
	stderrors "errors"
	"testing"

	"poll-lab/domain"

	"github.com/stretchr/testify/require"
)

// fakeHistory serves pages newest first, the way a transport exposes
// room history.
type fakeHistory struct {
	pages [][]RawEvent
	calls int
}

func (f *fakeHistory) RoomEvents(_ context.Context, _ domain.RoomID, _ string) ([]RawEvent, string, error) {
	page := f.calls
	f.calls++
	if page >= len(f.pages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.pages) {
		next = string(rune('a' + page + 1))
	}
	return f.pages[page], next, nil
}

func Test_CollectPoll_Walks_Back_To_Start(t *testing.T) {
	req := require.New(t)

	src := &fakeHistory{pages: [][]RawEvent{
		{
			raw("m.room.message", "$chatter", `{"body":"hi"}`),
			raw(TypePollEnd, "$end", `{"poll_id":"$start"}`),
			raw(TypePollResponse, "$v2", `{"poll_id":"$start","selections":[1]}`),
		},
		{
			raw(TypePollResponse, "$other", `{"poll_id":"$different","selections":[0]}`),
			raw(TypePollResponse, "$v1", `{"poll_id":"$start","selections":[0]}`),
			raw(TypePollStart, "$start", `{"question":"Lunch?","options":["A","B"]}`),
			raw(TypePollResponse, "$older", `{"poll_id":"$ancient","selections":[0]}`),
		},
	}}

	events, err := CollectPoll(context.Background(), src, "!room", "$start")
	req.NoError(err)

	ids := make([]domain.EventID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	req.Equal([]domain.EventID{"$start", "$v1", "$v2", "$end"}, ids, "oldest first, scoped to the poll")
	req.Equal(2, src.calls, "walk stops at the start event")
}

func Test_CollectPoll_Poll_Start_Not_In_History(t *testing.T) {
	req := require.New(t)

	src := &fakeHistory{pages: [][]RawEvent{
		{raw(TypePollResponse, "$v1", `{"poll_id":"$start","selections":[0]}`)},
	}}

	events, err := CollectPoll(context.Background(), src, "!room", "$start")
	req.NoError(err)
	req.Len(events, 1, "whatever was found is still replayable")
}

func Test_CollectPoll_Propagates_Source_Errors(t *testing.T) {
	req := require.New(t)

	_, err := CollectPoll(context.Background(), failingHistory{}, "!room", "$start")
	req.ErrorContains(err, "history walk")
}

type failingHistory struct{}

func (failingHistory) RoomEvents(context.Context, domain.RoomID, string) ([]RawEvent, string, error) {
	return nil, "", stderrors.New("gateway timeout")
}

func Test_RelatedToPoll(t *testing.T) {
	req := require.New(t)

	req.True(RelatedToPoll(raw(TypePollStart, "$start", `{}`), "$start"))
	req.False(RelatedToPoll(raw(TypePollStart, "$other", `{}`), "$start"))
	req.True(RelatedToPoll(raw(TypePollResponse, "$v", `{"poll_id":"$start"}`), "$start"))
	req.True(RelatedToPoll(raw(TypeRedaction, "$r", `{"redacts":"$start"}`), "$start"))
	req.False(RelatedToPoll(raw("m.room.message", "$m", `{"body":"x"}`), "$start"))
	req.False(RelatedToPoll(raw(TypePollResponse, "$bad", `garbage`), "$start"))
}
