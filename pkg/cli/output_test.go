package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}

func TestPrinter_NoColorOnBuffer(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, FormatText)
	if strings.Contains(p.mark(true), "\033[") {
		t.Error("expected uncolored output for a non-terminal writer")
	}

	p.SetColor(true)
	if !strings.Contains(p.mark(false), "\033[") {
		t.Error("expected escape codes once color is forced on")
	}
}

func TestPrinter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, FormatJSON)

	if err := p.JSON(map[string]int{"peers": 2}); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"peers\": 2") {
		t.Errorf("expected indented JSON, got %q", buf.String())
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}
