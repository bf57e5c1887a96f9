// Package lifecycle drives the open->closed transition of a poll. The
// transition is terminal: there is no way back to OPEN, and every vote
// arriving afterwards is rejected upstream by the registry.
package lifecycle

import (
	"log/slog"

	"poll-lab/domain"
	"poll-lab/msgsync"
	"poll-lab/registry"
)

type Controller struct {
	log      *slog.Logger
	registry *registry.Registry
	syncer   *msgsync.Syncer
}

func NewController(log *slog.Logger, reg *registry.Registry, syncer *msgsync.Syncer) *Controller {
	return &Controller{log: log, registry: reg, syncer: syncer}
}

// CloseByEnd handles a proper poll end event: freeze the tally, publish
// the final result once, persist the poll as CLOSED.
func (c *Controller) CloseByEnd(poll, trigger domain.EventID) error {
	return c.close(poll, trigger, false)
}

// CloseByRedaction closes a poll whose start event was redacted. The poll
// is no longer valid, so the final message announces cancellation instead
// of results.
func (c *Controller) CloseByRedaction(poll, trigger domain.EventID) error {
	return c.close(poll, trigger, true)
}

func (c *Controller) close(poll, trigger domain.EventID, cancelled bool) error {
	transitioned := false
	err := c.registry.Update(poll, func(p *domain.Poll, _ *domain.Tally) error {
		transitioned = p.Close(trigger, cancelled)
		return nil
	})
	if err != nil {
		return err
	}
	if !transitioned {
		// Already closed; the first trigger won and its final render stands.
		c.log.Debug("Ignoring close for already closed poll", "poll", poll, "trigger", trigger)
		return nil
	}

	c.syncer.Notify(poll)
	c.log.Info("Poll closed", "poll", poll, "trigger", trigger, "cancelled", cancelled)
	return nil
}
