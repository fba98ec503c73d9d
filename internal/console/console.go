// Package console renders the launcher flow for non-interactive use: an
// update summary, a [Y/n] prompt, a spinner and a progress line.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/egoavara/astra-launcher/internal/i18n"
	"github.com/egoavara/astra-launcher/internal/launcher"
)

const progressWidth = 30

// Console writes launcher output to out and reads answers from in
type Console struct {
	out io.Writer
	in  *bufio.Reader

	mu           sync.Mutex
	bar          progress.Model
	lastProgress string
}

// New creates a console on the given streams
func New(out io.Writer, in io.Reader) *Console {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = progressWidth
	return &Console{
		out: out,
		in:  bufio.NewReader(in),
		bar: bar,
	}
}

// Printf writes a formatted line
func (c *Console) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// ShowUpdateSummary displays the result of an update check
func (c *Console) ShowUpdateSummary(info launcher.UpdateInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !info.IsUpdateAvailable {
		fmt.Fprintln(c.out, i18n.T("console.up_to_date", map[string]interface{}{"Version": info.Installed()}))
		return
	}

	current := info.Installed()
	if !info.IsInstalled() {
		current = i18n.T("status.not_installed", nil)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, i18n.T("console.update_found", map[string]interface{}{
		"Latest":  info.LatestVersion,
		"Current": current,
	}))

	if notes := strings.TrimSpace(info.ReleaseNotes); notes != "" {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, i18n.T("console.release_notes", nil))
		for _, line := range strings.Split(notes, "\n") {
			fmt.Fprintf(c.out, "  %s\n", line)
		}
	}
	fmt.Fprintln(c.out)
}

// PromptDownload asks whether to install or update now. An empty answer
// means yes.
func (c *Console) PromptDownload(info launcher.UpdateInfo) bool {
	action := i18n.T("action.install", nil)
	if info.IsInstalled() {
		action = i18n.T("action.update", nil)
	}

	c.Printf("%s", i18n.T("console.prompt_download", map[string]interface{}{"Action": action}))

	input, err := c.in.ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))

	// Default to yes if empty or explicit yes
	return input == "" || input == "y" || input == "yes"
}

// Progress redraws the progress line when the visible text changed
func (c *Console) Progress(p launcher.DownloadProgress) {
	pct := min(100, max(0, p.Percentage))
	line := fmt.Sprintf("\r  %s %s %s", p.Status, c.bar.ViewAs(pct/100), launcher.ProgressText(p))

	c.mu.Lock()
	defer c.mu.Unlock()
	if line == c.lastProgress {
		return
	}
	c.lastProgress = line
	fmt.Fprint(c.out, line)
}

// EndProgress terminates the progress line
func (c *Console) EndProgress() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastProgress != "" {
		fmt.Fprintln(c.out)
		c.lastProgress = ""
	}
}
