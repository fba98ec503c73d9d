package console

import (
	"context"

	"github.com/pkg/errors"

	"github.com/egoavara/astra-launcher/internal/i18n"
	"github.com/egoavara/astra-launcher/internal/launcher"
)

// ErrUpdateRequired is returned by Launch while an update is pending
var ErrUpdateRequired = errors.New("an update must be installed before launching")

// CheckOptions controls the check flow
type CheckOptions struct {
	// AssumeYes downloads without asking
	AssumeYes bool
}

// Check starts l, reports the update check and, when an update is found and
// confirmed, downloads it while drawing progress.
func (c *Console) Check(ctx context.Context, l *launcher.Launcher, opts CheckOptions) error {
	l.OnChange(func(s launcher.Snapshot) {
		if p := s.VisibleProgress(); p != nil {
			c.Progress(*p)
		}
	})

	s, err := c.start(ctx, l)
	if err != nil {
		return err
	}

	c.ShowUpdateSummary(*s.UpdateInfo)
	if !s.CanDownload() {
		return nil
	}

	if !opts.AssumeYes && !c.PromptDownload(*s.UpdateInfo) {
		c.Printf("%s\n", i18n.T("console.download_skipped", nil))
		return nil
	}

	version := s.UpdateInfo.LatestVersion
	c.Printf("%s\n", i18n.T("console.downloading", map[string]interface{}{"Version": version}))

	err = l.StartDownload(ctx)
	c.EndProgress()
	if err != nil {
		return err
	}

	if s = l.Snapshot(); s.State == launcher.StateError {
		return errors.Errorf("download failed: %s", s.Err)
	}
	c.Printf("%s\n", i18n.T("console.installed", map[string]interface{}{"Version": version}))
	return nil
}

// Launch starts l and launches the game when it is up to date
func (c *Console) Launch(ctx context.Context, l *launcher.Launcher) error {
	s, err := c.start(ctx, l)
	if err != nil {
		return err
	}

	if s.State == launcher.StateUpdateAvailable {
		c.ShowUpdateSummary(*s.UpdateInfo)
		return ErrUpdateRequired
	}

	c.Printf("%s\n", i18n.T("console.launching", nil))
	if err := l.LaunchGame(ctx); err != nil {
		return err
	}
	if notice := l.Snapshot().Notice; notice != "" {
		return errors.Errorf("launch failed: %s", notice)
	}
	c.Printf("%s\n", i18n.T("console.launched", nil))
	return nil
}

// start runs the initial check behind a spinner
func (c *Console) start(ctx context.Context, l *launcher.Launcher) (launcher.Snapshot, error) {
	spinner := c.NewSpinner(i18n.T("console.checking", nil))
	spinner.Start()

	err := l.Start(ctx)
	s := l.Snapshot()
	spinner.Stop(err == nil && s.State != launcher.StateError)

	if err != nil {
		return s, err
	}
	if s.State == launcher.StateError {
		return s, errors.Errorf("update check failed: %s", s.Err)
	}
	return s, nil
}
