package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"poll-lab/domain"
)

// HistorySource pages backwards through a room's timeline. RoomEvents
// returns events newest first together with the token of the next older
// page; an empty token means the walk reached the beginning of the room.
type HistorySource interface {
	RoomEvents(ctx context.Context, room domain.RoomID, from string) ([]RawEvent, string, error)
}

// CollectPoll walks a room's history backwards until the given poll's
// start event is found and returns every event related to that poll,
// oldest first, ready to be replayed through the normal pipeline.
// The filter's dedup makes a replay converge with live delivery.
func CollectPoll(ctx context.Context, src HistorySource, room domain.RoomID, poll domain.EventID) ([]RawEvent, error) {
	var related []RawEvent
	var from string

	for {
		page, next, err := src.RoomEvents(ctx, room, from)
		if err != nil {
			return nil, fmt.Errorf("history walk for poll %s: %w", poll, err)
		}

		for _, raw := range page {
			if !RelatedToPoll(raw, poll) {
				continue
			}
			related = append(related, raw)
			if raw.ID == poll {
				slices.Reverse(related)
				return related, nil
			}
		}

		if next == "" || next == from {
			// Reached the beginning without the start event: the poll
			// predates the bot's view of the room.
			slices.Reverse(related)
			return related, nil
		}
		from = next
	}
}

// RelatedToPoll reports whether a raw event belongs to the given poll,
// either as its start event or by referencing it in its payload.
func RelatedToPoll(raw RawEvent, poll domain.EventID) bool {
	switch raw.Type {
	case TypePollStart:
		return raw.ID == poll
	case TypePollResponse, TypePollEnd:
		var ref struct {
			Poll string `json:"poll_id"`
		}
		if err := json.Unmarshal(raw.Payload, &ref); err != nil {
			return false
		}
		return domain.EventID(ref.Poll) == poll
	case TypeRedaction:
		var ref struct {
			Redacts string `json:"redacts"`
		}
		if err := json.Unmarshal(raw.Payload, &ref); err != nil {
			return false
		}
		return domain.EventID(ref.Redacts) == poll
	default:
		return false
	}
}

