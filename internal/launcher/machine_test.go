package launcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []State{StateChecking, StateReady, StateUpdateAvailable, StateDownloading, StateError}

func TestMachine_InitialState(t *testing.T) {
	m := NewMachine(&fakeBackend{}, nil)
	assert.Equal(t, StateChecking, m.State())

	s := m.snapshot()
	assert.Nil(t, s.UpdateInfo)
	assert.Nil(t, s.Progress)
	assert.Empty(t, s.Err)
}

func TestMachine_CheckNoUpdateGoesReady(t *testing.T) {
	backend := &fakeBackend{checkFn: upToDate("1.0.0")}
	m := NewMachine(backend, nil)

	require.NoError(t, m.CheckForUpdates(context.Background()))

	s := m.snapshot()
	assert.Equal(t, StateReady, s.State)
	require.NotNil(t, s.UpdateInfo)
	assert.Equal(t, "1.0.0", s.UpdateInfo.Installed())
	assert.False(t, s.CanDownload())
	assert.True(t, s.CanLaunch())
}

func TestMachine_CheckUpdateGoesUpdateAvailable(t *testing.T) {
	backend := &fakeBackend{checkFn: updateFound("2.3.0", strPtr("2.2.0"))}
	m := NewMachine(backend, nil)

	require.NoError(t, m.CheckForUpdates(context.Background()))

	assert.Equal(t, StateUpdateAvailable, m.State())
	assert.Empty(t, backend.downloadCalls, "download must wait for the intent")
}

func TestMachine_CheckFailureGoesError(t *testing.T) {
	backend := &fakeBackend{checkFn: func() (UpdateInfo, error) {
		return UpdateInfo{}, errors.New("No game release found")
	}}
	m := NewMachine(backend, nil)

	require.NoError(t, m.CheckForUpdates(context.Background()))

	s := m.snapshot()
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, "No game release found", s.Err)
}

func TestMachine_RetryClearsError(t *testing.T) {
	fail := true
	backend := &fakeBackend{}
	backend.checkFn = func() (UpdateInfo, error) {
		if fail {
			return UpdateInfo{}, errors.New("offline")
		}
		return upToDate("1.0.0")()
	}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	require.NoError(t, m.CheckForUpdates(ctx))
	require.Equal(t, StateError, m.State())

	fail = false
	require.NoError(t, m.CheckForUpdates(ctx))

	s := m.snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.Empty(t, s.Err)
	assert.Equal(t, 2, backend.checkCalls)
}

func TestMachine_CheckClearsErrorWhileChecking(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{checkFn: func() (UpdateInfo, error) {
		return UpdateInfo{}, errors.New("offline")
	}}
	m := NewMachine(backend, nil)
	ctx := context.Background()
	require.NoError(t, m.CheckForUpdates(ctx))

	backend.checkFn = func() (UpdateInfo, error) {
		<-release
		return upToDate("1.0.0")()
	}
	seen := make(chan Snapshot, 1)
	m.onChange = func() {
		select {
		case seen <- m.snapshot():
		default:
		}
	}

	done := make(chan error, 1)
	go func() { done <- m.CheckForUpdates(ctx) }()

	first := <-seen
	assert.Equal(t, StateChecking, first.State)
	assert.Empty(t, first.Err)

	close(release)
	require.NoError(t, <-done)
}

func TestMachine_DownloadSuccessUpdatesInfoLocally(t *testing.T) {
	backend := &fakeBackend{checkFn: updateFound("2.3.0", nil)}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	require.NoError(t, m.CheckForUpdates(ctx))
	require.NoError(t, m.StartDownload(ctx))

	s := m.snapshot()
	assert.Equal(t, StateReady, s.State)
	require.NotNil(t, s.UpdateInfo)
	assert.False(t, s.UpdateInfo.IsUpdateAvailable)
	require.NotNil(t, s.UpdateInfo.InstalledVersion)
	assert.Equal(t, "2.3.0", *s.UpdateInfo.InstalledVersion)
	assert.Equal(t, 1, backend.checkCalls, "backend must not be re-queried")
	assert.Equal(t, []string{"2.3.0@https://example.com/astra-2.3.0-linux.zip"}, backend.downloadCalls)
}

func TestMachine_DownloadFailureGoesError(t *testing.T) {
	backend := &fakeBackend{
		checkFn: updateFound("2.3.0", nil),
		downloadFn: func(version, url string) error {
			return errors.New("connection reset")
		},
	}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	require.NoError(t, m.CheckForUpdates(ctx))
	require.NoError(t, m.StartDownload(ctx))

	s := m.snapshot()
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, "connection reset", s.Err)
	assert.True(t, s.UpdateInfo.IsUpdateAvailable)

	// retry starts over at the check, not at the download
	assert.ErrorIs(t, m.StartDownload(ctx), ErrInvalidState)
	require.NoError(t, m.CheckForUpdates(ctx))
	assert.Equal(t, StateUpdateAvailable, m.State())
}

func TestMachine_DownloadGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("no info", func(t *testing.T) {
		backend := &fakeBackend{}
		m := NewMachine(backend, nil)
		assert.ErrorIs(t, m.StartDownload(ctx), ErrNoUpdate)
		assert.Equal(t, StateChecking, m.State())
		assert.Empty(t, backend.downloadCalls)
	})

	t.Run("up to date", func(t *testing.T) {
		backend := &fakeBackend{checkFn: upToDate("1.0.0")}
		m := NewMachine(backend, nil)
		require.NoError(t, m.CheckForUpdates(ctx))
		assert.ErrorIs(t, m.StartDownload(ctx), ErrNoUpdate)
		assert.Equal(t, StateReady, m.State())
		assert.Empty(t, backend.downloadCalls)
	})
}

func TestMachine_ReentrantCallsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{checkFn: updateFound("2.0.0", nil)}
	m := NewMachine(backend, nil)
	ctx := context.Background()
	require.NoError(t, m.CheckForUpdates(ctx))

	backend.downloadFn = func(version, url string) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- m.StartDownload(ctx) }()
	<-started

	assert.Equal(t, StateDownloading, m.State())
	assert.ErrorIs(t, m.StartDownload(ctx), ErrBusy)
	assert.ErrorIs(t, m.CheckForUpdates(ctx), ErrBusy)
	assert.Equal(t, StateDownloading, m.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, m.State())
	assert.Len(t, backend.downloadCalls, 1)
	assert.Equal(t, 1, backend.checkCalls)
}

func TestMachine_ProgressKeepsLatestSample(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{checkFn: updateFound("2.0.0", nil)}
	backend.downloadFn = func(version, url string) error {
		close(started)
		<-release
		return nil
	}
	m := NewMachine(backend, nil)
	ctx := context.Background()
	require.NoError(t, m.CheckForUpdates(ctx))

	done := make(chan error, 1)
	go func() { done <- m.StartDownload(ctx) }()
	<-started

	m.OnProgress(DownloadProgress{DownloadedBytes: 50, TotalBytes: 100, Percentage: 50, Status: "Downloading..."})
	m.OnProgress(DownloadProgress{DownloadedBytes: 100, TotalBytes: 100, Percentage: 100, Status: "Downloading..."})

	s := m.snapshot()
	require.NotNil(t, s.VisibleProgress())
	assert.Equal(t, uint64(100), s.VisibleProgress().DownloadedBytes)
	assert.Equal(t, float64(100), s.VisibleProgress().Percentage)

	close(release)
	require.NoError(t, <-done)
}

func TestMachine_ProgressOutsideDownloadingIsStoredButHidden(t *testing.T) {
	backend := &fakeBackend{checkFn: updateFound("2.0.0", nil)}
	m := NewMachine(backend, nil)
	require.NoError(t, m.CheckForUpdates(context.Background()))

	m.OnProgress(DownloadProgress{DownloadedBytes: 10, TotalBytes: 100, Percentage: 10, Status: "late"})

	s := m.snapshot()
	assert.Equal(t, StateUpdateAvailable, s.State)
	require.NotNil(t, s.Progress)
	assert.Equal(t, "late", s.Progress.Status)
	assert.Nil(t, s.VisibleProgress())
}

func TestMachine_LaunchFailureKeepsReady(t *testing.T) {
	backend := &fakeBackend{
		checkFn: upToDate("1.0.0"),
		launchFn: func() error {
			return errors.New("Game not installed. Please download first.")
		},
	}
	m := NewMachine(backend, nil)
	ctx := context.Background()
	require.NoError(t, m.CheckForUpdates(ctx))

	require.NoError(t, m.LaunchGame(ctx))

	s := m.snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.Empty(t, s.Err)
	assert.Equal(t, "Game not installed. Please download first.", s.Notice)

	// a successful launch clears the notice
	backend.launchFn = nil
	require.NoError(t, m.LaunchGame(ctx))
	assert.Empty(t, m.snapshot().Notice)
	assert.Equal(t, 2, backend.launchCalls)
}

func TestMachine_LaunchRequiresReady(t *testing.T) {
	backend := &fakeBackend{checkFn: updateFound("2.0.0", nil)}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	assert.ErrorIs(t, m.LaunchGame(ctx), ErrNotReady)
	require.NoError(t, m.CheckForUpdates(ctx))
	assert.ErrorIs(t, m.LaunchGame(ctx), ErrNotReady)
	assert.Zero(t, backend.launchCalls)
}

func TestMachine_AlwaysInExactlyOneDefinedState(t *testing.T) {
	scripts := []struct {
		name     string
		check    func() (UpdateInfo, error)
		download func(string, string) error
	}{
		{"up to date", upToDate("1.0.0"), nil},
		{"update ok", updateFound("2.0.0", nil), nil},
		{"update fails", updateFound("2.0.0", nil), func(string, string) error { return errors.New("disk full") }},
		{"check fails", func() (UpdateInfo, error) { return UpdateInfo{}, errors.New("dns") }, nil},
	}

	for _, script := range scripts {
		t.Run(script.name, func(t *testing.T) {
			backend := &fakeBackend{checkFn: script.check, downloadFn: script.download}
			m := NewMachine(backend, nil)
			var observed []State
			m.onChange = func() { observed = append(observed, m.State()) }

			ctx := context.Background()
			_ = m.CheckForUpdates(ctx)
			_ = m.StartDownload(ctx)
			_ = m.LaunchGame(ctx)
			_ = m.CheckForUpdates(ctx)

			require.NotEmpty(t, observed)
			for _, s := range observed {
				assert.Contains(t, allStates, s)
			}
		})
	}
}

func TestState_IsBusy(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateChecking, true},
		{StateReady, false},
		{StateUpdateAvailable, false},
		{StateDownloading, true},
		{StateError, false},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.state.IsBusy(), "State(%s).IsBusy()", test.state)
	}
}

func TestMachine_LateProgressAfterDownloadIsHidden(t *testing.T) {
	backend := &fakeBackend{checkFn: updateFound("2.0.0", strPtr("1.0.0"))}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	require.NoError(t, m.CheckForUpdates(ctx))
	require.NoError(t, m.StartDownload(ctx))
	require.Equal(t, StateReady, m.State())

	// a sample delivered after the download call returned
	m.OnProgress(DownloadProgress{DownloadedBytes: 90, TotalBytes: 100, Percentage: 90, Status: "Downloading..."})

	s := m.snapshot()
	assert.Equal(t, StateReady, s.State)
	assert.Nil(t, s.VisibleProgress())
	assert.True(t, s.CanLaunch())
	assert.False(t, s.CanDownload())
}

func TestMachine_DownloadRejectedOutsideUpdateAvailable(t *testing.T) {
	backend := &fakeBackend{
		checkFn: updateFound("2.0.0", nil),
		downloadFn: func(version, url string) error {
			return errors.New("disk full")
		},
	}
	m := NewMachine(backend, nil)
	ctx := context.Background()

	require.NoError(t, m.CheckForUpdates(ctx))
	require.NoError(t, m.StartDownload(ctx))
	require.Equal(t, StateError, m.State())

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, m.StartDownload(ctx), ErrInvalidState)
		assert.Equal(t, StateError, m.State())
		assert.Equal(t, "disk full", m.snapshot().Err)
	}
	assert.Len(t, backend.downloadCalls, 1)
}
