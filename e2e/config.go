package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_DEBUG_RENDER dumps every summary body the engine sends
	DebugRender bool `envconfig:"E2E_DEBUG_RENDER" default:"false"`
	// E2E_DEBOUNCE_WINDOW keeps scenarios fast; raise it to watch coalescing
	DebounceWindow time.Duration `envconfig:"E2E_DEBOUNCE_WINDOW" default:"10ms"`
	// E2E_SYNC_TIMEOUT bounds every wait on an asynchronous effect
	SyncTimeout time.Duration `envconfig:"E2E_SYNC_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
