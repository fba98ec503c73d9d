// Package launcher orchestrates the update-check, download and launch flow of
// the game launcher. It owns the launcher state, consumes the backend's
// progress stream and keeps the user configuration in sync with the backend.
package launcher

import (
	"context"
	"errors"
)

// ProgressEvent is the name of the backend's download progress stream
const ProgressEvent = "download-progress"

var (
	// ErrBusy is returned when a check or download is already in flight
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoUpdate is returned by StartDownload when there is nothing to download
	ErrNoUpdate = errors.New("no update available")
	// ErrNotReady is returned by LaunchGame outside StateReady
	ErrNotReady = errors.New("game is not ready to launch")
	// ErrAlreadySubscribed is returned when the progress stream is subscribed twice
	ErrAlreadySubscribed = errors.New("progress stream already subscribed")
)

// Backend is the gateway to the native backend process.
// None of the calls are cancelled by the launcher; ctx only ends at shutdown.
type Backend interface {
	CheckUpdates(ctx context.Context) (UpdateInfo, error)
	DownloadUpdate(ctx context.Context, version, downloadURL string) error
	LaunchGame(ctx context.Context) error
	GetConfig(ctx context.Context) (LauncherConfig, error)
	UpdateConfig(ctx context.Context, cfg LauncherConfig) error
	SubscribeProgress(ctx context.Context, handler func(DownloadProgress)) (Subscription, error)
}

// Subscription is a live registration on the progress stream
type Subscription interface {
	// Close releases the registration. It is safe to call more than once.
	Close() error
}
