package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"poll-lab/internal"
	"poll-lab/lifecycle"
	"poll-lab/msgsync"
	"poll-lab/registry"
	"poll-lab/repositories"
	"poll-lab/runtime"
	"poll-lab/runtime/workers"
	"poll-lab/timeline"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the engine lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Engine wiring
	repo := repositories.NewPollRepository(db, log)
	reg := registry.New(repo, log)
	messenger := NewConsoleMessenger(log)
	syncer := msgsync.NewSyncer(log, reg, messenger,
		config.DebounceWindow, config.EditRetryLimit, config.EditRetryDelay)
	controller := lifecycle.NewController(log, reg, syncer)
	filter := timeline.NewFilter(log, config.DedupeCacheSize)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, sup, reg, syncer, controller, filter, config.BufferSize)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 6. Event intake: NDJSON timeline events from a file or stdin.
	// A real deployment replaces this with the chat transport's stream.
	errChan := make(chan error, 1)
	go func() {
		errChan <- feedEvents(ctx, orchestrator, config.EventsFile, log)
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return err
		}
		log.Info("Event stream ended, waiting for shutdown signal")
		<-ctx.Done()
	}

	// 8. Final Cleanup
	orchestrator.Stop()
	log.Info("Program stopped cleanly")
	return nil
}
