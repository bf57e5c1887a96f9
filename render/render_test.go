package render

import (
	"strings"
	"testing"

	"poll-lab/domain"

	"github.com/stretchr/testify/require"
)

func lunchPoll(kind domain.PollKind) *domain.Poll {
	return domain.NewPoll("$poll", "!room", "Lunch?", []domain.Option{
		{ID: "0", Label: "Pizza"},
		{ID: "1", Label: "Sushi"},
		{ID: "2", Label: "Salad"},
	}, kind)
}

func apply(t *domain.Tally, voter string, token int64, selections ...int) {
	t.Apply(domain.Vote{
		Poll:       "$poll",
		Voter:      domain.UserID(voter),
		Selections: selections,
		Token:      token,
		EventID:    domain.EventID(voter + "-event"),
	})
}

func Test_Render_Is_Deterministic(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)
	apply(tally, "@bob", 2, 1)

	req.Equal(Render(poll, tally), Render(poll, tally))
}

func Test_Render_Orders_By_Count_Then_Option_Order(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 1)
	apply(tally, "@bob", 2, 1)
	apply(tally, "@clara", 3, 2)

	body := Render(poll, tally)

	sushi := strings.Index(body, "Sushi — 2:")
	salad := strings.Index(body, "Salad — 1:")
	pizza := strings.Index(body, "Pizza — 0:")
	req.True(sushi >= 0 && salad >= 0 && pizza >= 0, body)
	req.Less(sushi, salad)
	req.Less(salad, pizza)
	req.Contains(body, "Poll results for `Lunch?`:")
	req.NotContains(body, "🏆", "open poll has no winner marker")
}

func Test_Render_Tied_Options_Keep_Original_Order(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)
	apply(tally, "@bob", 2, 1)

	body := Render(poll, tally)
	req.Less(strings.Index(body, "Pizza"), strings.Index(body, "Sushi"))
}

func Test_Render_Empty_Tally(t *testing.T) {
	req := require.New(t)
	body := Render(lunchPoll(domain.KindDisclosed), domain.NewTally())

	req.Contains(body, "Pizza — 0:")
	req.Contains(body, "Sushi — 0:")
	req.Contains(body, "Salad — 0:")
}

func Test_Render_Closed_Marks_All_Tied_Winners(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	poll.Close("$end", false)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)
	apply(tally, "@bob", 2, 1)
	apply(tally, "@clara", 3, 1)
	apply(tally, "@dave", 4, 0)

	body := Render(poll, tally)

	req.Contains(body, "Final poll results for `Lunch?`:")
	req.Contains(body, "Pizza — 2 🏆:")
	req.Contains(body, "Sushi — 2 🏆:")
	req.Contains(body, "Salad — 0:")
	req.NotContains(body, "Salad — 0 🏆")
	req.Contains(body, "4 participant(s) voted.")
}

func Test_Render_Closed_Without_Votes_Has_No_Winner(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	poll.Close("$end", false)

	body := Render(poll, domain.NewTally())
	req.NotContains(body, "🏆")
	req.Contains(body, "0 participant(s) voted.")
}

func Test_Render_Voter_Mentions_Are_Pills(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	tally := domain.NewTally()
	apply(tally, "@alice:example.org", 1, 0)

	body := Render(poll, tally)
	req.Contains(body, `<a href="https://matrix.to/#/@alice:example.org">@alice:example.org</a>`)
}

func Test_Render_Undisclosed_Open_Hides_Selections(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindUndisclosed)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)
	apply(tally, "@bob", 2, 1)

	body := Render(poll, tally)

	req.Contains(body, "Voters for poll `Lunch?`:")
	req.Contains(body, "2 participant(s) so far.")
	req.NotContains(body, "Pizza")
	req.NotContains(body, "Sushi")
}

func Test_Render_Undisclosed_Closed_Discloses_Results(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindUndisclosed)
	poll.Close("$end", false)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)

	body := Render(poll, tally)
	req.Contains(body, "Final poll results for `Lunch?`:")
	req.Contains(body, "Pizza — 1 🏆:")
}

func Test_Render_Cancelled_Publishes_No_Results(t *testing.T) {
	req := require.New(t)
	poll := lunchPoll(domain.KindDisclosed)
	poll.Close("$redaction", true)
	tally := domain.NewTally()
	apply(tally, "@alice", 1, 0)

	body := Render(poll, tally)
	req.Equal("Poll `Lunch?` was cancelled. No results will be published.\n", body)
	req.NotContains(body, "Pizza")
}
