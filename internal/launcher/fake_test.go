package launcher

import (
	"context"
	"sync"
)

// fakeBackend is a scriptable Backend. Nil funcs succeed with zero values.
type fakeBackend struct {
	mu sync.Mutex

	checkFn    func() (UpdateInfo, error)
	downloadFn func(version, url string) error
	launchFn   func() error
	getFn      func() (LauncherConfig, error)
	updateFn   func(LauncherConfig) error
	subErr     error

	checkCalls    int
	downloadCalls []string
	launchCalls   int
	saved         []LauncherConfig
	handler       func(DownloadProgress)
	subs          []*fakeSubscription
}

type fakeSubscription struct {
	mu     sync.Mutex
	closes int
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (f *fakeBackend) CheckUpdates(ctx context.Context) (UpdateInfo, error) {
	f.mu.Lock()
	f.checkCalls++
	fn := f.checkFn
	f.mu.Unlock()
	if fn == nil {
		return UpdateInfo{}, nil
	}
	return fn()
}

func (f *fakeBackend) DownloadUpdate(ctx context.Context, version, url string) error {
	f.mu.Lock()
	f.downloadCalls = append(f.downloadCalls, version+"@"+url)
	fn := f.downloadFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(version, url)
}

func (f *fakeBackend) LaunchGame(ctx context.Context) error {
	f.mu.Lock()
	f.launchCalls++
	fn := f.launchFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn()
}

func (f *fakeBackend) GetConfig(ctx context.Context) (LauncherConfig, error) {
	if f.getFn == nil {
		return DefaultConfig(), nil
	}
	return f.getFn()
}

func (f *fakeBackend) UpdateConfig(ctx context.Context, cfg LauncherConfig) error {
	f.mu.Lock()
	f.saved = append(f.saved, cfg)
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(cfg)
}

func (f *fakeBackend) SubscribeProgress(ctx context.Context, handler func(DownloadProgress)) (Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	sub := &fakeSubscription{}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeBackend) emit(p DownloadProgress) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(p)
	}
}

func strPtr(s string) *string {
	return &s
}

func updateFound(latest string, installed *string) func() (UpdateInfo, error) {
	return func() (UpdateInfo, error) {
		return UpdateInfo{
			LatestVersion:     latest,
			DownloadURL:       "https://example.com/astra-" + latest + "-linux.zip",
			ReleaseNotes:      "notes",
			IsUpdateAvailable: true,
			InstalledVersion:  installed,
		}, nil
	}
}

func upToDate(version string) func() (UpdateInfo, error) {
	return func() (UpdateInfo, error) {
		return UpdateInfo{
			LatestVersion:     version,
			DownloadURL:       "https://example.com/astra-" + version + "-linux.zip",
			IsUpdateAvailable: false,
			InstalledVersion:  strPtr(version),
		}, nil
	}
}
