package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/egoavara/astra-launcher/internal/browser"
	"github.com/egoavara/astra-launcher/internal/i18n"
	"github.com/egoavara/astra-launcher/internal/launcher"
)

// Controller is the part of the launcher the UI drives
type Controller interface {
	Snapshot() launcher.Snapshot
	CheckForUpdates(ctx context.Context) error
	StartDownload(ctx context.Context) error
	LaunchGame(ctx context.Context) error
	ToggleFullscreen(ctx context.Context) error
	DismissNotice()
}

// ViewMode represents the current view
type ViewMode int

const (
	ViewMain ViewMode = iota
	ViewSettings
)

// Intent names the user action an intentMsg reports on
type Intent string

const (
	IntentRetry    Intent = "retry"
	IntentDownload Intent = "download"
	IntentLaunch   Intent = "launch"
	IntentToggle   Intent = "toggle-fullscreen"
)

// snapshotMsg carries a fresh launcher snapshot into the program
type snapshotMsg launcher.Snapshot

// intentMsg reports that an intent returned
type intentMsg struct {
	intent Intent
	err    error
}

// linkMsg reports the outcome of opening a footer link
type linkMsg struct {
	link browser.Link
	err  error
}

const (
	maxProgressWidth = 60
	maxNotesLines    = 8
)

// Model is the bubbletea model for the launcher
type Model struct {
	ctx        context.Context
	controller Controller
	open       func(url string) error

	snap     launcher.Snapshot
	view     ViewMode
	spinner  spinner.Model
	progress progress.Model
	linkErr  string
	width    int
	height   int
	quitting bool
}

// NewModel creates a launcher model showing controller's current snapshot
func NewModel(ctx context.Context, controller Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = updateStyle

	p := progress.New(progress.WithDefaultGradient())
	p.Width = maxProgressWidth

	return Model{
		ctx:        ctx,
		controller: controller,
		open:       browser.Open,
		snap:       controller.Snapshot(),
		view:       ViewMain,
		spinner:    s,
		progress:   p,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(maxProgressWidth, max(10, msg.Width-12))
		return m, nil

	case snapshotMsg:
		wasBusy := m.snap.State.IsBusy()
		m.snap = launcher.Snapshot(msg)
		if !wasBusy && m.snap.State.IsBusy() {
			return m, m.spinner.Tick
		}
		return m, nil

	case intentMsg:
		// Failures that matter are already part of the snapshot; guard
		// rejections such as launcher.ErrBusy need no feedback.
		return m, nil

	case linkMsg:
		m.linkErr = ""
		if msg.err != nil {
			m.linkErr = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		// the spinner only runs while checking or downloading
		if !m.snap.State.IsBusy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	}

	if m.view == ViewSettings {
		return m.handleSettingsKey(msg)
	}
	return m.handleMainKey(msg)
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if m.snap.State == launcher.StateError {
			return m, m.intent(IntentRetry, m.controller.CheckForUpdates)
		}

	case "enter":
		switch {
		case m.snap.CanDownload():
			return m, m.intent(IntentDownload, m.controller.StartDownload)
		case m.snap.CanLaunch():
			return m, m.intent(IntentLaunch, m.controller.LaunchGame)
		case m.snap.State == launcher.StateError:
			return m, m.intent(IntentRetry, m.controller.CheckForUpdates)
		}

	case "d":
		if m.snap.CanDownload() {
			return m, m.intent(IntentDownload, m.controller.StartDownload)
		}

	case "l":
		if m.snap.CanLaunch() {
			return m, m.intent(IntentLaunch, m.controller.LaunchGame)
		}

	case "s":
		m.view = ViewSettings

	case "esc":
		m.linkErr = ""
		if m.snap.Notice != "" {
			// off the update loop: dismissing emits a snapshot back to it
			dismiss := m.controller.DismissNotice
			return m, func() tea.Msg {
				dismiss()
				return nil
			}
		}

	case "n":
		return m, m.openLink(browser.LinkPatchNotes)
	case "w":
		return m, m.openLink(browser.LinkWiki)
	case "b":
		return m, m.openLink(browser.LinkWebClient)
	}

	return m, nil
}

func (m Model) intent(intent Intent, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentMsg{intent: intent, err: fn(ctx)}
	}
}

func (m Model) openLink(link browser.Link) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return linkMsg{link: link, err: open(string(link))}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.view == ViewSettings {
		b.WriteString(m.renderSettings())
	} else {
		b.WriteString(statusBoxStyle.Render(m.renderStatus()))
	}
	b.WriteString("\n")

	if m.snap.Notice != "" {
		b.WriteString(noticeStyle.Render("! " + m.snap.Notice))
		b.WriteString("\n")
	}
	if m.linkErr != "" {
		b.WriteString(noticeStyle.Render("! " + m.linkErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(strings.Join(m.helpItems(), " | ")))

	return b.String()
}

func (m Model) renderHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(i18n.T("app.title", nil)),
		" ",
		taglineStyle.Render(i18n.T("app.tagline", nil)),
	)
}

func (m Model) renderStatus() string {
	var b strings.Builder

	switch m.snap.State {
	case launcher.StateChecking:
		b.WriteString(m.spinner.View() + " " + i18n.T("status.checking", nil))

	case launcher.StateError:
		b.WriteString(errorStyle.Render(i18n.T("status.error", map[string]interface{}{"Error": m.snap.Err})))
		b.WriteString("\n\n")
		b.WriteString(buttonStyle.Render(i18n.T("action.retry", nil)))

	case launcher.StateUpdateAvailable:
		info := m.snap.UpdateInfo
		b.WriteString(updateStyle.Render(i18n.T("status.update_available", map[string]interface{}{"Version": info.LatestVersion})))
		b.WriteString("\n")
		b.WriteString(currentStyle.Render(i18n.T("status.current", map[string]interface{}{"Version": installedLabel(info)})))
		if notes := strings.TrimSpace(info.ReleaseNotes); notes != "" {
			b.WriteString("\n\n")
			b.WriteString(currentStyle.Render(i18n.T("status.release_notes", nil)))
			b.WriteString("\n")
			b.WriteString(notesStyle.Render(truncateLines(notes, maxNotesLines)))
		}
		b.WriteString("\n\n")
		b.WriteString(buttonStyle.Render(downloadLabel(info)))

	case launcher.StateDownloading:
		p := m.snap.VisibleProgress()
		if p == nil {
			b.WriteString(m.spinner.View() + " " + i18n.T("status.starting_download", nil))
			break
		}
		b.WriteString(p.Status)
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(clampPercent(p.Percentage) / 100))
		b.WriteString("\n")
		b.WriteString(currentStyle.Render(launcher.ProgressText(*p)))

	case launcher.StateReady:
		version := ""
		if m.snap.UpdateInfo != nil {
			version = m.snap.UpdateInfo.Installed()
		}
		b.WriteString(i18n.T("status.version", map[string]interface{}{"Version": version}))
		b.WriteString("\n\n")
		b.WriteString(buttonStyle.Render(i18n.T("action.launch", nil)))
	}

	return b.String()
}

func (m Model) renderFooter() string {
	links := []string{
		linkStyle.Render(i18n.T("link.patch_notes", nil)) + footerStyle.Render(" (n)"),
		linkStyle.Render(i18n.T("link.wiki", nil)) + footerStyle.Render(" (w)"),
		linkStyle.Render(i18n.T("link.web_client", nil)) + footerStyle.Render(" (b)"),
	}
	if m.view == ViewSettings {
		links = links[1:]
	}
	return footerStyle.Render(i18n.T("app.copyright", nil)) + "   " + strings.Join(links, "  ")
}

func (m Model) helpItems() []string {
	if m.view == ViewSettings {
		return []string{i18n.T("help.toggle", nil), i18n.T("help.back", nil), i18n.T("help.quit", nil)}
	}

	var items []string
	switch {
	case m.snap.State == launcher.StateError:
		items = append(items, i18n.T("help.retry", nil))
	case m.snap.CanDownload():
		items = append(items, i18n.T("help.download", map[string]interface{}{
			"Action": strings.ToLower(downloadLabel(m.snap.UpdateInfo)),
		}))
	case m.snap.CanLaunch():
		items = append(items, i18n.T("help.launch", nil))
	}
	items = append(items,
		i18n.T("help.settings", nil),
		i18n.T("help.links", nil),
		i18n.T("help.quit", nil),
	)
	return items
}

// ActiveView returns the view being shown
func (m Model) ActiveView() ViewMode {
	return m.view
}

func installedLabel(info *launcher.UpdateInfo) string {
	if info == nil || !info.IsInstalled() {
		return i18n.T("status.not_installed", nil)
	}
	return *info.InstalledVersion
}

func downloadLabel(info *launcher.UpdateInfo) string {
	if info != nil && info.IsInstalled() {
		return i18n.T("action.update", nil)
	}
	return i18n.T("action.install", nil)
}

func clampPercent(p float64) float64 {
	return min(100, max(0, p))
}

func truncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + "\n…"
}

// Run shows the launcher until the user quits. It starts l once the program
// is ready to receive snapshots and closes it on return.
func Run(ctx context.Context, l *launcher.Launcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, l)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	l.OnChange(func(s launcher.Snapshot) {
		p.Send(snapshotMsg(s))
	})
	defer l.Close()

	go func() {
		_ = l.Start(ctx)
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
