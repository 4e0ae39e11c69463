package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()
	Version = "0.1.0-test"

	buf := &bytes.Buffer{}
	versionCmd.SetOut(buf)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	for _, want := range []string{"talos-tui 0.1.0-test", "Git Commit: ", "Go Version: go", "OS/Arch: "} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestUserAgent(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()
	Version = "1.2.3"

	if got := userAgent(); got != "talos-tui/1.2.3" {
		t.Errorf("userAgent() = %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "check", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}
