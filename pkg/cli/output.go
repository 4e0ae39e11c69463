package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is human readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseFormat parses an output format name. The empty string is text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes command output in a fixed format. Text output is
// colorized only when the writer is a terminal and NO_COLOR is unset.
type Printer struct {
	w      io.Writer
	format OutputFormat

	// ShowTimes includes the snapshot time and source ages in status
	// frames. Without them consecutive frames of an unchanged state are
	// identical.
	ShowTimes bool

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
	bold *color.Color
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, format OutputFormat) *Printer {
	if w == nil {
		w = os.Stdout
	}
	p := &Printer{
		w:         w,
		format:    format,
		ShowTimes: true,
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
		bad:       color.New(color.FgRed, color.Bold),
		dim:       color.New(color.Faint),
		bold:      color.New(color.Bold),
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	p.SetColor(IsTerminal(w) && !noColor)
	return p
}

// SetColor forces colorized text output on or off.
func (p *Printer) SetColor(enabled bool) {
	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Format returns the printer's output format.
func (p *Printer) Format() OutputFormat {
	return p.format
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// mark returns a check or cross for ok.
func (p *Printer) mark(ok bool) string {
	if ok {
		return p.ok.Sprint("✓")
	}
	return p.bad.Sprint("✗")
}
