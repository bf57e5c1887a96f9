package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"poll-lab/domain"
	"poll-lab/lifecycle"
	"poll-lab/msgsync"
	"poll-lab/registry"
	"poll-lab/repositories"
	"poll-lab/runtime"
	"poll-lab/runtime/workers"
	"poll-lab/timeline"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Step prints a colorized header so scenario phases stand out in logs
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Engine is a fully wired poll engine running in-process against a real
// BadgerDB and a recording transport.
type Engine struct {
	Orchestrator *Orchestrator
	Registry     *registry.Registry
	Messenger    *RecordingMessenger

	db     *badger.DB
	cancel context.CancelFunc
}

// Orchestrator aliases the runtime type so scenarios read naturally.
type Orchestrator = runtime.Orchestrator

// StartEngine brings up the whole pipeline on the given database
// directory. Calling it again with the same directory after Stop models
// a process restart.
func (s *BaseSuite) StartEngine(dir string) *Engine {
	db, err := badger.Open(badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	s.Require().NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := repositories.NewPollRepository(db, log)
	reg := registry.New(repo, log)
	messenger := NewRecordingMessenger(s, s.Config.DebugRender)
	syncer := msgsync.NewSyncer(log, reg, messenger, s.Config.DebounceWindow, 3, 10*time.Millisecond)
	lc := lifecycle.NewController(log, reg, syncer)
	filter := timeline.NewFilter(log, 1024)
	supervisor := workers.NewSupervisor(log, 50*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(log, supervisor, reg, syncer, lc, filter, 64)

	ctx, cancel := context.WithCancel(context.Background())
	s.Require().NoError(orchestrator.Start(ctx))

	return &Engine{
		Orchestrator: orchestrator,
		Registry:     reg,
		Messenger:    messenger,
		db:           db,
		cancel:       cancel,
	}
}

func (e *Engine) Stop(s *BaseSuite) {
	e.Orchestrator.Stop()
	e.cancel()
	s.Require().NoError(e.db.Close())
}

// WaitSummary blocks until the summary body for the given room satisfies
// the predicate.
func (s *BaseSuite) WaitSummary(m *RecordingMessenger, room domain.RoomID, ok func(text string) bool) string {
	var last string
	s.Require().Eventually(func() bool {
		text, found := m.Summary(room)
		if !found {
			return false
		}
		last = text
		return ok(text)
	}, s.Config.SyncTimeout, 5*time.Millisecond, "summary never reached the expected state")
	return last
}

// RecordingMessenger stands in for the chat transport: it stores the
// latest body per summary message and counts every call.
type RecordingMessenger struct {
	suite *BaseSuite
	debug bool

	mu       sync.Mutex
	bodies   map[domain.EventID]string
	rooms    map[domain.RoomID]domain.EventID
	creates  int
	edits    int
	failNext error
}

func NewRecordingMessenger(s *BaseSuite, debug bool) *RecordingMessenger {
	return &RecordingMessenger{
		suite:  s,
		debug:  debug,
		bodies: make(map[domain.EventID]string),
		rooms:  make(map[domain.RoomID]domain.EventID),
	}
}

func (m *RecordingMessenger) CreateMessage(_ context.Context, room domain.RoomID, text string) (domain.EventID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	id := domain.EventID("$" + uuid.NewString())
	m.bodies[id] = text
	m.rooms[room] = id
	m.creates++
	m.log("CREATE", room, text)
	return id, nil
}

func (m *RecordingMessenger) EditMessage(_ context.Context, room domain.RoomID, message domain.EventID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.bodies[message] = text
	m.edits++
	m.log("EDIT", room, text)
	return nil
}

// Summary returns the current body of the room's summary message.
func (m *RecordingMessenger) Summary(room domain.RoomID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.rooms[room]
	if !ok {
		return "", false
	}
	return m.bodies[id], true
}

func (m *RecordingMessenger) Counts() (creates, edits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates, m.edits
}

// FailNext makes the next transport call return err once.
func (m *RecordingMessenger) FailNext(err error) {
	m.mu.Lock()
	m.failNext = err
	m.mu.Unlock()
}

func (m *RecordingMessenger) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *RecordingMessenger) log(kind string, room domain.RoomID, text string) {
	if !m.debug {
		return
	}
	m.suite.T().Logf("%s %s:\n%s", kind, room, text)
}
