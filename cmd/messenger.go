package main

import (
	"context"
	"log/slog"

	"poll-lab/domain"

	"github.com/google/uuid"
)

// ConsoleMessenger stands in for the chat transport when running against
// a replayed event file: create/edit calls land in the log instead of a
// room, with generated message ids so the sync protocol runs unchanged.
type ConsoleMessenger struct {
	log *slog.Logger
}

func NewConsoleMessenger(log *slog.Logger) *ConsoleMessenger {
	return &ConsoleMessenger{log: log}
}

func (m *ConsoleMessenger) CreateMessage(_ context.Context, room domain.RoomID, text string) (domain.EventID, error) {
	id := domain.EventID("$" + uuid.NewString())
	m.log.Info("CREATE message", "room", room, "message", id)
	m.log.Info(text)
	return id, nil
}

func (m *ConsoleMessenger) EditMessage(_ context.Context, room domain.RoomID, message domain.EventID, text string) error {
	m.log.Info("EDIT message", "room", room, "message", message)
	m.log.Info(text)
	return nil
}
