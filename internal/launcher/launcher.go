package launcher

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/egoavara/astra-launcher/internal/logger"
)

// Launcher wires the state machine, the progress subscriber and the config
// store around one backend. One Launcher exists per process; presenters get
// it passed in and read it through Snapshot.
type Launcher struct {
	*Machine

	config     *ConfigStore
	subscriber *Subscriber
	log        *zerolog.Logger

	emitMu    sync.Mutex
	listeners []func(Snapshot)
}

// New creates a launcher on top of backend
func New(backend Backend, log *zerolog.Logger) *Launcher {
	if log == nil {
		log = logger.Nop()
	}

	l := &Launcher{
		Machine: NewMachine(backend, log),
		config:  NewConfigStore(backend, log),
		log:     log,
	}
	l.subscriber = NewSubscriber(backend, l.Machine.OnProgress, log)
	l.Machine.onChange = l.emit
	l.config.onChange = l.emit
	return l
}

// OnChange registers fn to receive a snapshot after every change.
// Register before Start; fn must not call back into intents synchronously.
func (l *Launcher) OnChange(fn func(Snapshot)) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Start subscribes to progress, loads the config and runs the initial check.
// It blocks until the check finished.
func (l *Launcher) Start(ctx context.Context) error {
	if err := l.subscriber.Start(ctx); err != nil {
		l.log.Warn().Err(err).Msg("Progress stream unavailable")
	}
	l.config.Load(ctx)
	return l.CheckForUpdates(ctx)
}

// Close releases the progress subscription
func (l *Launcher) Close() error {
	return l.subscriber.Close()
}

// Config returns the in-memory launcher config
func (l *Launcher) Config() LauncherConfig {
	return l.config.Get()
}

// SaveConfig persists cfg. A failure keeps the previous config, is surfaced
// as a notice and returned.
func (l *Launcher) SaveConfig(ctx context.Context, cfg LauncherConfig) error {
	if err := l.config.Save(ctx, cfg); err != nil {
		l.Notify(err.Error())
		return err
	}
	return nil
}

// ToggleFullscreen flips the fullscreen preference and saves it
func (l *Launcher) ToggleFullscreen(ctx context.Context) error {
	cfg := l.config.Get()
	cfg.Fullscreen = !cfg.Fullscreen
	return l.SaveConfig(ctx, cfg)
}

// Snapshot returns a copy of the current state
func (l *Launcher) Snapshot() Snapshot {
	s := l.Machine.snapshot()
	s.Config = l.config.Get()
	return s
}

// emit delivers a fresh snapshot to listeners. Deliveries are serialized so
// the last snapshot a listener sees is the latest state.
func (l *Launcher) emit() {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()

	if len(l.listeners) == 0 {
		return
	}
	s := l.Snapshot()
	for _, fn := range l.listeners {
		fn(s)
	}
}
