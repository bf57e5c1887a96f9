//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"poll-lab/domain"
	"poll-lab/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Messenger is the narrow slice of the chat transport the engine talks to.
// CreateMessage posts the first summary message for a poll; EditMessage
// replaces its body. Both may be slow or rate limited; callers own the retry
// policy and must never assume success after a timeout.
type Messenger interface {
	CreateMessage(ctx context.Context, room domain.RoomID, text string) (domain.EventID, error)
	EditMessage(ctx context.Context, room domain.RoomID, message domain.EventID, text string) error
}

// EventSink observes classified events after the engine has applied them.
// Best-effort fan-out for harnesses, logs and metrics, never domain logic.
type EventSink interface {
	Consume(ctx context.Context, e event.TimelineEvent) error
}
