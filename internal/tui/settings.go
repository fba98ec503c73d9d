package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/egoavara/astra-launcher/internal/browser"
	"github.com/egoavara/astra-launcher/internal/i18n"
)

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f", " ", "enter":
		return m, m.intent(IntentToggle, m.controller.ToggleFullscreen)

	case "esc", "backspace":
		m.view = ViewMain
		m.linkErr = ""

	case "w":
		return m, m.openLink(browser.LinkWiki)
	case "b":
		return m, m.openLink(browser.LinkWebClient)
	}

	return m, nil
}

func (m Model) renderSettings() string {
	var b strings.Builder

	b.WriteString(settingLabelStyle.Render(i18n.T("settings.title", nil)))
	b.WriteString("\n\n")

	toggle := toggleOffStyle.Render("[ ] " + i18n.T("settings.off", nil))
	if m.snap.Config.Fullscreen {
		toggle = toggleOnStyle.Render("[x] " + i18n.T("settings.on", nil))
	}
	b.WriteString(settingLabelStyle.Render(i18n.T("settings.fullscreen", nil)))
	b.WriteString("  ")
	b.WriteString(toggle)
	b.WriteString("\n")
	b.WriteString(settingDescStyle.Render(i18n.T("settings.fullscreen_desc", nil)))

	return statusBoxStyle.Render(b.String())
}
