package stream

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Eraser rewinds terminal output between reconnection attempts, so a retry
// replays its events over the stale partial output instead of below it.
type Eraser interface {
	EraseLines(n int)
}

// NewEraser returns an ANSI eraser when w is an interactive terminal, and a
// no-op otherwise: piped output must never receive cursor movements.
func NewEraser(w io.Writer) Eraser {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return &ansiEraser{w: w}
	}
	return nopEraser{}
}

type ansiEraser struct {
	w io.Writer
}

func (e *ansiEraser) EraseLines(n int) {
	for i := 0; i < n; i++ {
		// cursor up one line, erase it entirely
		fmt.Fprint(e.w, "\x1b[1A\x1b[2K")
	}
	fmt.Fprint(e.w, "\r")
}

type nopEraser struct{}

func (nopEraser) EraseLines(int) {}
