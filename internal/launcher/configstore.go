package launcher

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/egoavara/astra-launcher/internal/logger"
)

// ConfigStore keeps the in-memory LauncherConfig in sync with the backend
type ConfigStore struct {
	backend  Backend
	log      *zerolog.Logger
	onChange func()

	mu      sync.RWMutex
	current LauncherConfig
}

// NewConfigStore creates a store holding DefaultConfig
func NewConfigStore(backend Backend, log *zerolog.Logger) *ConfigStore {
	if log == nil {
		log = logger.Nop()
	}
	return &ConfigStore{
		backend: backend,
		log:     log,
		current: DefaultConfig(),
	}
}

// Load fetches the persisted config. A failure is only logged; the store keeps
// its current value.
func (c *ConfigStore) Load(ctx context.Context) {
	cfg, err := c.backend.GetConfig(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to load config, using defaults")
		return
	}

	c.mu.Lock()
	c.current = cfg
	c.mu.Unlock()
	c.changed()
}

// Save persists cfg and replaces the in-memory copy only on success
func (c *ConfigStore) Save(ctx context.Context, cfg LauncherConfig) error {
	if err := c.backend.UpdateConfig(ctx, cfg); err != nil {
		c.log.Error().Err(err).Bool("fullscreen", cfg.Fullscreen).Msg("Failed to save config")
		return err
	}

	c.mu.Lock()
	c.current = cfg
	c.mu.Unlock()
	c.changed()
	return nil
}

// Get returns the in-memory config
func (c *ConfigStore) Get() LauncherConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *ConfigStore) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
