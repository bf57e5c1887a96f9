package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"poll-lab/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Supervisor_Restarts_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	worker := mocks.NewMockWorker(ctrl)

	runs := make(chan struct{}, 8)
	attempt := 0
	worker.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		runs <- struct{}{}
		attempt++
		if attempt <= 2 {
			panic("boom")
		}
		<-ctx.Done()
		return nil
	}).AnyTimes()

	s := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelDebug), time.Millisecond)
	s.Add(worker)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatal("worker was not restarted")
		}
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not shut down")
	}
	req.GreaterOrEqual(attempt, 3)
}

func Test_Supervisor_Restarts_Failing_Worker(t *testing.T) {
	ctrl := gomock.NewController(t)
	worker := mocks.NewMockWorker(ctrl)

	runs := make(chan struct{}, 8)
	attempt := 0
	worker.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		runs <- struct{}{}
		attempt++
		if attempt == 1 {
			return stderrors.New("lost connection")
		}
		<-ctx.Done()
		return nil
	}).AnyTimes()

	s := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelDebug), time.Millisecond)
	s.Add(worker)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	<-runs
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("worker was not restarted after an error")
	}

	s.Stop()
	<-done
}

func Test_Supervisor_Never_Restarts_Finished_Worker(t *testing.T) {
	ctrl := gomock.NewController(t)
	worker := mocks.NewMockWorker(ctrl)

	// A nil return means the worker finished its job; Times(1) fails the
	// test if the supervisor brings it back anyway.
	worker.EXPECT().Run(gomock.Any()).Return(nil).Times(1)

	s := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelDebug), time.Millisecond)
	s.Add(worker)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not return after its only worker finished")
	}
}

func Test_Supervisor_Stop_Cancels_Workers(t *testing.T) {
	ctrl := gomock.NewController(t)
	worker := mocks.NewMockWorker(ctrl)
	worker.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}).Times(1)

	s := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelDebug), time.Millisecond)
	s.Add(worker)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}
