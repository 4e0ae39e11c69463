package cli

import (
	"fmt"
	"io"
	"sync"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Screen redraws frames to a writer. On a terminal each frame replaces the
// previous one; otherwise a frame is written only when it differs from the
// last one written.
type Screen struct {
	mu     sync.Mutex
	w      io.Writer
	redraw bool
	last   string
	frames int
}

// NewScreen creates a screen on w. redraw selects in-place redrawing.
func NewScreen(w io.Writer, redraw bool) *Screen {
	return &Screen{w: w, redraw: redraw}
}

// Draw writes frame.
func (s *Screen) Draw(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.redraw && frame == s.last {
		return nil
	}
	s.last = frame
	s.frames++

	if s.redraw {
		_, err := fmt.Fprint(s.w, clearScreen+frame)
		return err
	}
	_, err := fmt.Fprint(s.w, frame)
	return err
}

// Finish writes a trailing message below the last frame.
func (s *Screen) Finish(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg != "" {
		fmt.Fprintln(s.w, msg)
	}
}

// Frames returns the number of frames written.
func (s *Screen) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
