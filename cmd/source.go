package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"poll-lab/runtime"
	"poll-lab/timeline"
)

// feedEvents streams NDJSON timeline events into the orchestrator, one
// event per line, preserving file order the way a room timeline would.
// An empty path reads from stdin.
func feedEvents(ctx context.Context, orchestrator *runtime.Orchestrator, path string, log *slog.Logger) error {
	var in io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening events file: %w", err)
		}
		defer f.Close()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw timeline.RawEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			log.Warn("Skipping unparseable event line", "error", err)
			continue
		}
		if err := orchestrator.Dispatch(ctx, raw); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	log.Info(fmt.Sprintf("Fed %d event(s)", count))
	return nil
}
