// Package render projects a poll and its tally into the summary message
// body. Pure and total: any tally state, including an empty one, renders
// to the same text every time. Nothing here talks to the transport.
package render

import (
	"fmt"
	"sort"
	"strings"

	"poll-lab/domain"

	"github.com/samber/lo"
)

// Pill formats a participant as a mention link so chat clients resolve
// the display name themselves.
func Pill(user domain.UserID) string {
	return fmt.Sprintf(`<a href="https://matrix.to/#/%s">%s</a>`, user, user)
}

type rankedOption struct {
	index  int
	option domain.Option
	voters []domain.UserID
}

// Render produces the summary body for a poll. Options are ordered by
// descending vote count, original option order breaking ties. Voters are
// listed in the order their first vote was recorded.
func Render(poll *domain.Poll, tally *domain.Tally) string {
	if poll.Cancelled {
		return renderCancelled(poll)
	}
	if poll.Kind == domain.KindUndisclosed && !poll.Closed() {
		return renderVoterList(poll, tally)
	}
	return renderResults(poll, tally)
}

func renderResults(poll *domain.Poll, tally *domain.Tally) string {
	ranked := lo.Map(poll.Options, func(opt domain.Option, i int) rankedOption {
		return rankedOption{index: i, option: opt, voters: tally.VotersFor(i)}
	})
	sort.SliceStable(ranked, func(a, b int) bool {
		return len(ranked[a].voters) > len(ranked[b].voters)
	})

	var sb strings.Builder
	writeHeader(&sb, poll)

	topCount := 0
	if len(ranked) > 0 {
		topCount = len(ranked[0].voters)
	}

	for _, r := range ranked {
		marker := ""
		if poll.Closed() && topCount > 0 && len(r.voters) == topCount {
			marker = " 🏆"
		}
		fmt.Fprintf(&sb, "%s — %d%s:\n", r.option.Label, len(r.voters), marker)
		for _, voter := range r.voters {
			sb.WriteString(Pill(voter))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	if poll.Closed() {
		fmt.Fprintf(&sb, "%d participant(s) voted.\n", tally.Participants())
	}
	return sb.String()
}

// renderVoterList hides selections while an undisclosed poll is open:
// only who has voted so far is shown.
func renderVoterList(poll *domain.Poll, tally *domain.Tally) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Voters for poll `%s`:\n\n", poll.Question)
	for _, voter := range tally.Voters() {
		sb.WriteString(Pill(voter))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%d participant(s) so far.\n", tally.Participants())
	return sb.String()
}

func renderCancelled(poll *domain.Poll) string {
	return fmt.Sprintf("Poll `%s` was cancelled. No results will be published.\n", poll.Question)
}

func writeHeader(sb *strings.Builder, poll *domain.Poll) {
	if poll.Closed() {
		fmt.Fprintf(sb, "Final poll results for `%s`:\n\n", poll.Question)
		return
	}
	fmt.Fprintf(sb, "Poll results for `%s`:\n\n", poll.Question)
}
