package gateway

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/egoavara/astra-launcher/internal/launcher"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend command names
const (
	CommandCheckUpdates   = "check_updates"
	CommandDownloadUpdate = "download_game_update"
	CommandLaunchGame     = "launch_astra"
	CommandGetConfig      = "get_config"
	CommandUpdateConfig   = "update_config"
	CommandCurrentVersion = "get_current_version"
)

// Request is a command frame sent to the backend
type Request struct {
	ID      string      `json:"id"`
	Command string      `json:"command"`
	Args    interface{} `json:"args,omitempty"`
}

// Frame is any frame received from the backend: a response when ID is set,
// an event when Event is set.
type Frame struct {
	ID      string              `json:"id,omitempty"`
	OK      bool                `json:"ok"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
	Event   string              `json:"event,omitempty"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

// DownloadArgs are the arguments of download_game_update
type DownloadArgs struct {
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
}

// UpdateConfigArgs are the arguments of update_config
type UpdateConfigArgs struct {
	Config ConfigPayload `json:"config"`
}

// UpdateInfoPayload is UpdateInfo as it crosses the backend boundary.
// Pointers mark presence; only installed_version may be absent or null.
type UpdateInfoPayload struct {
	LatestVersion     *string `json:"latest_version"`
	DownloadURL       *string `json:"download_url"`
	ReleaseNotes      *string `json:"release_notes"`
	IsUpdateAvailable *bool   `json:"is_update_available"`
	InstalledVersion  *string `json:"installed_version"`
}

// ProgressPayload is DownloadProgress as it crosses the backend boundary
type ProgressPayload struct {
	DownloadedBytes *uint64  `json:"downloaded_bytes"`
	TotalBytes      *uint64  `json:"total_bytes"`
	Percentage      *float64 `json:"percentage"`
	Status          *string  `json:"status"`
}

// ConfigPayload is LauncherConfig as it crosses the backend boundary
type ConfigPayload struct {
	Fullscreen *bool `json:"fullscreen"`
}

// MissingFieldError reports a required field absent from a payload
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Record, e.Field)
}

// FromUpdateInfo converts a domain record to its payload
func FromUpdateInfo(u launcher.UpdateInfo) UpdateInfoPayload {
	return UpdateInfoPayload{
		LatestVersion:     &u.LatestVersion,
		DownloadURL:       &u.DownloadURL,
		ReleaseNotes:      &u.ReleaseNotes,
		IsUpdateAvailable: &u.IsUpdateAvailable,
		InstalledVersion:  u.InstalledVersion,
	}
}

// ToUpdateInfo converts the payload, failing on any missing required field
func (p UpdateInfoPayload) ToUpdateInfo() (launcher.UpdateInfo, error) {
	const record = "update info"
	switch {
	case p.LatestVersion == nil:
		return launcher.UpdateInfo{}, &MissingFieldError{record, "latest_version"}
	case p.DownloadURL == nil:
		return launcher.UpdateInfo{}, &MissingFieldError{record, "download_url"}
	case p.ReleaseNotes == nil:
		return launcher.UpdateInfo{}, &MissingFieldError{record, "release_notes"}
	case p.IsUpdateAvailable == nil:
		return launcher.UpdateInfo{}, &MissingFieldError{record, "is_update_available"}
	}

	info := launcher.UpdateInfo{
		LatestVersion:     *p.LatestVersion,
		DownloadURL:       *p.DownloadURL,
		ReleaseNotes:      *p.ReleaseNotes,
		IsUpdateAvailable: *p.IsUpdateAvailable,
	}
	if p.InstalledVersion != nil {
		v := *p.InstalledVersion
		info.InstalledVersion = &v
	}
	return info, nil
}

// FromProgress converts a domain record to its payload
func FromProgress(d launcher.DownloadProgress) ProgressPayload {
	return ProgressPayload{
		DownloadedBytes: &d.DownloadedBytes,
		TotalBytes:      &d.TotalBytes,
		Percentage:      &d.Percentage,
		Status:          &d.Status,
	}
}

// ToProgress converts the payload, failing on any missing field
func (p ProgressPayload) ToProgress() (launcher.DownloadProgress, error) {
	const record = "download progress"
	switch {
	case p.DownloadedBytes == nil:
		return launcher.DownloadProgress{}, &MissingFieldError{record, "downloaded_bytes"}
	case p.TotalBytes == nil:
		return launcher.DownloadProgress{}, &MissingFieldError{record, "total_bytes"}
	case p.Percentage == nil:
		return launcher.DownloadProgress{}, &MissingFieldError{record, "percentage"}
	case p.Status == nil:
		return launcher.DownloadProgress{}, &MissingFieldError{record, "status"}
	}

	return launcher.DownloadProgress{
		DownloadedBytes: *p.DownloadedBytes,
		TotalBytes:      *p.TotalBytes,
		Percentage:      *p.Percentage,
		Status:          *p.Status,
	}, nil
}

// FromConfig converts a domain record to its payload
func FromConfig(c launcher.LauncherConfig) ConfigPayload {
	return ConfigPayload{Fullscreen: &c.Fullscreen}
}

// ToConfig converts the payload, failing on any missing field
func (p ConfigPayload) ToConfig() (launcher.LauncherConfig, error) {
	if p.Fullscreen == nil {
		return launcher.LauncherConfig{}, &MissingFieldError{"launcher config", "fullscreen"}
	}
	return launcher.LauncherConfig{Fullscreen: *p.Fullscreen}, nil
}
