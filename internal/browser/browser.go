// Package browser opens the launcher's web links in the system browser.
package browser

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// Link is a page reachable from the launcher footer
type Link string

const (
	LinkPatchNotes Link = "https://github.com/nomaggames/astra/releases"
	LinkWiki       Link = "https://wiki.astragame.online"
	LinkWebClient  Link = "https://client.astragame.online"
)

// command is replaced in tests
var command = exec.Command

// Open starts the platform's URL handler for url without waiting for it
func Open(url string) error {
	name, args := opener(runtime.GOOS, url)
	if err := command(name, args...).Start(); err != nil {
		return errors.Wrapf(err, "open %s", url)
	}
	return nil
}

func opener(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}
