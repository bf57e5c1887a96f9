// Package msgsync keeps each poll's single summary message in step with
// its tally. One editor goroutine per poll serializes all create/edit
// calls for that poll: the remote edit semantics are last-write-wins, so
// two concurrent edits could leave a stale tally on screen with nothing
// left to correct it.
package msgsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"poll-lab/contract"
	"poll-lab/domain"
	"poll-lab/registry"
	"poll-lab/render"

	"github.com/cespare/xxhash/v2"
)

// Syncer fans tally-change notifications out to per-poll editors.
// Notifications arriving inside the debounce window coalesce into a
// single render/edit cycle, so a burst of near-simultaneous votes costs
// one edit, not one per vote.
type Syncer struct {
	log       *slog.Logger
	registry  *registry.Registry
	messenger contract.Messenger

	window       time.Duration
	retryLimit   int
	retryBackoff time.Duration

	mu      sync.Mutex
	ctx     context.Context
	editors map[domain.EventID]*editor
	wg      sync.WaitGroup
}

func NewSyncer(log *slog.Logger, reg *registry.Registry, messenger contract.Messenger,
	window time.Duration, retryLimit int, retryBackoff time.Duration) *Syncer {
	return &Syncer{
		log:          log,
		registry:     reg,
		messenger:    messenger,
		window:       window,
		retryLimit:   retryLimit,
		retryBackoff: retryBackoff,
		editors:      make(map[domain.EventID]*editor),
	}
}

// Notify marks a poll's summary message as possibly stale. Cheap and
// non-blocking; callers fire it on every meaningful delta and on close.
func (s *Syncer) Notify(poll domain.EventID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.editors[poll]
	if !ok {
		e = &editor{syncer: s, poll: poll, notify: make(chan struct{}, 1)}
		s.editors[poll] = e
		if s.ctx != nil {
			s.spawn(s.ctx, e)
		}
	}
	select {
	case e.notify <- struct{}{}:
	default:
		// A cycle is already pending; it will pick this change up.
	}
}

// Run starts the editor goroutines and blocks until the context ends.
func (s *Syncer) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	for _, e := range s.editors {
		if !e.running {
			s.spawn(ctx, e)
		}
	}
	s.mu.Unlock()

	<-ctx.Done()
	s.wg.Wait()
	return nil
}

// spawn must be called with s.mu held.
func (s *Syncer) spawn(ctx context.Context, e *editor) {
	e.running = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		e.run(ctx)
	}()
}

// editor owns one poll's summary message. Single goroutine, so edits for
// the poll never interleave.
type editor struct {
	syncer  *Syncer
	poll    domain.EventID
	notify  chan struct{}
	running bool

	// fingerprint of the last text successfully sent; a render hashing
	// to the same value emits no call at all.
	fingerprint    uint64
	hasFingerprint bool
}

func (e *editor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.notify:
		}

		// Debounce: let the burst land before rendering once.
		if e.syncer.window > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.syncer.window):
			}
		}

		err := e.flush(ctx)
		for attempt := 1; err != nil && attempt <= e.syncer.retryLimit; attempt++ {
			e.syncer.log.Warn("Summary sync failed, will retry",
				"poll", e.poll, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * e.syncer.retryBackoff):
			}
			err = e.flush(ctx)
		}
		if err != nil {
			// Give up until the next tally change; the fingerprint was
			// not advanced, so that cycle re-compares and repairs.
			e.syncer.log.Error("Summary sync abandoned until next change", "poll", e.poll, "error", err)
		}
	}
}

// flush renders the poll once and issues at most one transport call.
// A transport failure is an unknown outcome: the fingerprint stays put
// and the next cycle re-compares instead of assuming either way.
func (e *editor) flush(ctx context.Context) error {
	var (
		room    domain.RoomID
		message domain.EventID
		text    string
	)
	err := e.syncer.registry.View(e.poll, func(p *domain.Poll, t *domain.Tally) error {
		room = p.Room
		message = p.MessageID
		text = render.Render(p, t)
		return nil
	})
	if err != nil {
		e.syncer.log.Debug("Skipping sync for unknown poll", "poll", e.poll, "error", err)
		return nil
	}

	fp := xxhash.Sum64String(text)
	if message != "" && e.hasFingerprint && fp == e.fingerprint {
		// Same text already on screen, nothing to send.
		return nil
	}

	if message == "" {
		id, err := e.syncer.messenger.CreateMessage(ctx, room, text)
		if err != nil {
			return fmt.Errorf("creating summary message: %w", err)
		}
		err = e.syncer.registry.Update(e.poll, func(p *domain.Poll, _ *domain.Tally) error {
			p.MessageID = id
			return nil
		})
		if err != nil {
			return fmt.Errorf("recording summary message id: %w", err)
		}
		e.fingerprint = fp
		e.hasFingerprint = true
		e.syncer.log.Info("Summary message created", "poll", e.poll, "message", id)
		return nil
	}

	if err := e.syncer.messenger.EditMessage(ctx, room, message, text); err != nil {
		return fmt.Errorf("editing summary message: %w", err)
	}
	e.fingerprint = fp
	e.hasFingerprint = true
	e.syncer.log.Debug("Summary message updated", "poll", e.poll, "message", message)
	return nil
}
