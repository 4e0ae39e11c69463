package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestScreen_DedupesWithoutRedraw(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewScreen(buf, false)

	for _, frame := range []string{"a\n", "a\n", "b\n", "b\n", "a\n"} {
		if err := s.Draw(frame); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
	}

	if buf.String() != "a\nb\na\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
	if s.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", s.Frames())
	}
}

func TestScreen_Redraw(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewScreen(buf, true)

	_ = s.Draw("a\n")
	_ = s.Draw("a\n")

	if got := strings.Count(buf.String(), clearScreen); got != 2 {
		t.Errorf("expected 2 clears, got %d", got)
	}
	s.Finish("stopped")
	if !strings.HasSuffix(buf.String(), "a\nstopped\n") {
		t.Errorf("unexpected tail %q", buf.String())
	}
}
