package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorNeonCyn = "\033[96m"
	colorNeonMag = "\033[95m"
)

// termMu synchronizes all terminal output so a log write can never land
// in the middle of another line.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// termWriter is a mutex-guarded io.Writer for log output.
type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() *termWriter {
	return &termWriter{}
}

// PrintBanner prints the startup banner, centered to the terminal width.
func PrintBanner() {
	width := termWidth()
	lines := []string{
		`__     _______ ____    _    `,
		`\ \   / / ____|  _ \  / \   `,
		` \ \ / /|  _| | | | |/ _ \  `,
		`  \ V / | |___| |_| / ___ \ `,
		`   \_/  |_____|____/_/   \_\`,
		``,
		`personal assistant operating layer`,
	}

	termMu.Lock()
	defer termMu.Unlock()
	for _, line := range lines {
		pad := (width - len(line)) / 2
		if pad < 0 {
			pad = 0
		}
		fmt.Println(colorBold + colorNeonCyn + strings.Repeat(" ", pad) + line + colorReset)
	}
	fmt.Println(colorNeonMag + strings.Repeat("─", min(width, 60)) + colorReset)
}
