package launcher

// State is the orchestration phase of the launcher
type State string

const (
	// StateChecking means an update check is in flight
	StateChecking State = "checking"
	// StateReady means no update is pending and the game can be launched
	StateReady State = "ready"
	// StateUpdateAvailable means an update was found but not started
	StateUpdateAvailable State = "update-available"
	// StateDownloading means a download is in flight
	StateDownloading State = "downloading"
	// StateError means the last check or download failed
	StateError State = "error"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsBusy returns true while a backend operation owns the state
func (s State) IsBusy() bool {
	return s == StateChecking || s == StateDownloading
}

// UpdateInfo is the result of an update check
type UpdateInfo struct {
	LatestVersion     string
	DownloadURL       string
	ReleaseNotes      string
	IsUpdateAvailable bool
	InstalledVersion  *string // nil when the game was never installed
}

// IsInstalled reports whether a previous install exists
func (u UpdateInfo) IsInstalled() bool {
	return u.InstalledVersion != nil
}

// Installed returns the installed version, or "" when not installed
func (u UpdateInfo) Installed() string {
	if u.InstalledVersion == nil {
		return ""
	}
	return *u.InstalledVersion
}

func (u UpdateInfo) clone() *UpdateInfo {
	c := u
	if u.InstalledVersion != nil {
		v := *u.InstalledVersion
		c.InstalledVersion = &v
	}
	return &c
}

// DownloadProgress is one sample of an in-flight download
type DownloadProgress struct {
	DownloadedBytes uint64
	TotalBytes      uint64  // 0 when unknown
	Percentage      float64 // 0-100, backend computed
	Status          string  // phase label, e.g. "Downloading..."
}

// LauncherConfig is the persisted user preference
type LauncherConfig struct {
	Fullscreen bool
}

// DefaultConfig returns the configuration used until a load succeeds
func DefaultConfig() LauncherConfig {
	return LauncherConfig{Fullscreen: true}
}

// Snapshot is a read-only copy of the launcher state for presenters
type Snapshot struct {
	State      State
	UpdateInfo *UpdateInfo
	Progress   *DownloadProgress
	Err        string // payload of StateError
	Notice     string // advisory message; never changes State
	Config     LauncherConfig
}

// VisibleProgress returns the latest progress sample while downloading.
// Samples received in other states are kept but not surfaced.
func (s Snapshot) VisibleProgress() *DownloadProgress {
	if s.State != StateDownloading {
		return nil
	}
	return s.Progress
}

// CanDownload reports whether the install/update intent would be accepted
func (s Snapshot) CanDownload() bool {
	return s.State == StateUpdateAvailable && s.UpdateInfo != nil && s.UpdateInfo.IsUpdateAvailable
}

// CanLaunch reports whether the launch intent would be accepted
func (s Snapshot) CanLaunch() bool {
	return s.State == StateReady
}
