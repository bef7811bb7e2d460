// Package browser opens task locations in the user's web browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// TaskURL returns the web UI location of a task inside its project.
func TaskURL(webURL string, projectID, taskID int64) string {
	q := url.Values{}
	q.Set("task", strconv.FormatInt(taskID, 10))
	return fmt.Sprintf("%s/projects/%d?%s", strings.TrimRight(webURL, "/"), projectID, q.Encode())
}

// Navigator opens task locations under a web UI root.
type Navigator struct {
	webURL string
	open   func(string) error
}

// NewNavigator creates a navigator for webURL. A nil open uses Open.
func NewNavigator(webURL string, open func(string) error) *Navigator {
	if open == nil {
		open = Open
	}
	return &Navigator{webURL: webURL, open: open}
}

// Navigate opens the task in the browser.
func (n *Navigator) Navigate(projectID, taskID int64) error {
	u := TaskURL(n.webURL, projectID, taskID)
	if err := n.open(u); err != nil {
		return fmt.Errorf("opening %s: %w", u, err)
	}
	return nil
}
