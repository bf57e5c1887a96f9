package internal

import "time"

type Config struct {
	BufferSize      int           `env:"BUFFER_SIZE,default=256"`
	DedupeCacheSize int           `env:"DEDUPE_CACHE_SIZE,default=4096"`
	DebounceWindow  time.Duration `env:"DEBOUNCE_WINDOW,default=250ms"`
	EditRetryLimit  int           `env:"EDIT_RETRY_LIMIT,default=3"`
	EditRetryDelay  time.Duration `env:"EDIT_RETRY_DELAY,default=2s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	EventsFile      string        `env:"EVENTS_FILE"`
}
