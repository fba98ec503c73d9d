package launcher

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/egoavara/astra-launcher/internal/logger"
)

// ErrInvalidState is returned when an intent does not apply to the current state
var ErrInvalidState = errors.New("operation not allowed in current state")

// Machine owns the orchestration state and drives transitions by calling the
// backend. Intents are guarded explicitly: at most one check or download is in
// flight, and every intent is checked against the current state.
type Machine struct {
	backend  Backend
	log      *zerolog.Logger
	onChange func()

	mu       sync.Mutex
	state    State
	info     *UpdateInfo
	progress *DownloadProgress
	errMsg   string
	notice   string
	inFlight bool
}

// NewMachine creates a machine in StateChecking
func NewMachine(backend Backend, log *zerolog.Logger) *Machine {
	if log == nil {
		log = logger.Nop()
	}
	return &Machine{
		backend: backend,
		log:     log,
		state:   StateChecking,
	}
}

// CheckForUpdates asks the backend whether an update is available.
// Backend failures move the machine to StateError and are not returned.
func (m *Machine) CheckForUpdates(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrBusy
	}
	m.inFlight = true
	m.state = StateChecking
	m.errMsg = ""
	m.notice = ""
	m.mu.Unlock()
	m.changed()

	m.log.Debug().Msg("Checking for updates")
	info, err := m.backend.CheckUpdates(ctx)

	m.mu.Lock()
	m.inFlight = false
	if err != nil {
		m.state = StateError
		m.errMsg = err.Error()
		m.log.Error().Err(err).Msg("Update check failed")
	} else {
		m.info = info.clone()
		if info.IsUpdateAvailable {
			m.state = StateUpdateAvailable
		} else {
			m.state = StateReady
		}
		m.log.Info().
			Str("latest", info.LatestVersion).
			Str("installed", info.Installed()).
			Bool("updateAvailable", info.IsUpdateAvailable).
			Msg("Update check finished")
	}
	m.mu.Unlock()
	m.changed()
	return nil
}

// StartDownload downloads the update found by the last check.
// On success the held UpdateInfo is updated locally without asking the
// backend again, so it may drift from what the backend would report.
func (m *Machine) StartDownload(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.info == nil || !m.info.IsUpdateAvailable {
		m.mu.Unlock()
		return ErrNoUpdate
	}
	if m.state != StateUpdateAvailable {
		m.mu.Unlock()
		return ErrInvalidState
	}
	version, url := m.info.LatestVersion, m.info.DownloadURL
	m.inFlight = true
	m.state = StateDownloading
	m.mu.Unlock()
	m.changed()

	m.log.Info().Str("version", version).Str("url", url).Msg("Downloading update")
	err := m.backend.DownloadUpdate(ctx, version, url)

	m.mu.Lock()
	m.inFlight = false
	if err != nil {
		m.state = StateError
		m.errMsg = err.Error()
		m.log.Error().Err(err).Str("version", version).Msg("Download failed")
	} else {
		m.state = StateReady
		installed := version
		m.info.IsUpdateAvailable = false
		m.info.InstalledVersion = &installed
		m.log.Info().Str("version", version).Msg("Download finished")
	}
	m.mu.Unlock()
	m.changed()
	return nil
}

// OnProgress stores the latest progress sample. Samples are kept in every
// state; they are only surfaced while downloading.
func (m *Machine) OnProgress(sample DownloadProgress) {
	m.mu.Lock()
	p := sample
	m.progress = &p
	m.mu.Unlock()
	m.changed()
}

// LaunchGame asks the backend to start the game. A failure is reported as a
// notice and never changes the state.
func (m *Machine) LaunchGame(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return ErrNotReady
	}
	m.mu.Unlock()
	m.DismissNotice()

	m.log.Info().Msg("Launching game")
	if err := m.backend.LaunchGame(ctx); err != nil {
		m.log.Error().Err(err).Msg("Launch failed")
		m.Notify(err.Error())
	}
	return nil
}

// Notify sets the advisory message
func (m *Machine) Notify(msg string) {
	m.mu.Lock()
	m.notice = msg
	m.mu.Unlock()
	m.changed()
}

// DismissNotice clears the advisory message
func (m *Machine) DismissNotice() {
	m.mu.Lock()
	had := m.notice != ""
	m.notice = ""
	m.mu.Unlock()
	if had {
		m.changed()
	}
}

// State returns the current state tag
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// snapshot copies everything but the config
func (m *Machine) snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:  m.state,
		Err:    m.errMsg,
		Notice: m.notice,
	}
	if m.info != nil {
		s.UpdateInfo = m.info.clone()
	}
	if m.progress != nil {
		p := *m.progress
		s.Progress = &p
	}
	return s
}

func (m *Machine) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
