package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Poll_Close_Is_Terminal_And_First_Trigger_Wins(t *testing.T) {
	req := require.New(t)
	poll := NewPoll("$poll", "!room", "Lunch?", []Option{{ID: "0", Label: "A"}, {ID: "1", Label: "B"}}, KindDisclosed)

	req.False(poll.Closed())
	req.True(poll.Close("$end", false))
	req.True(poll.Closed())
	req.Equal(EventID("$end"), poll.ClosedBy)
	req.False(poll.Cancelled)

	req.False(poll.Close("$redaction", true), "second close is a no-op")
	req.Equal(EventID("$end"), poll.ClosedBy)
	req.False(poll.Cancelled)
}

func Test_Poll_ValidSelections(t *testing.T) {
	req := require.New(t)
	poll := NewPoll("$poll", "!room", "Lunch?", []Option{{ID: "0", Label: "A"}, {ID: "1", Label: "B"}}, KindDisclosed)

	req.True(poll.ValidSelections(nil))
	req.True(poll.ValidSelections([]int{0, 1}))
	req.False(poll.ValidSelections([]int{2}))
	req.False(poll.ValidSelections([]int{-1}))
}
