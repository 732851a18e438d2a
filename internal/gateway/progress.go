package gateway

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Progress modes accepted by ShouldShowProgress.
const (
	ProgressAuto  = "auto"
	ProgressTTY   = "tty"
	ProgressPlain = "plain"
)

// ShouldShowProgress reports whether download progress bars are drawn.
// Auto mode draws them only when stderr is a terminal.
func ShouldShowProgress(mode string) bool {
	switch mode {
	case ProgressPlain:
		return false
	case ProgressTTY:
		return true
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// newProgressBar creates a byte progress bar on stderr. A negative total
// renders a spinner.
func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}
