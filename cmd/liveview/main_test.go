package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandPassesProducerArgs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var code int
	var out bytes.Buffer
	cmd := newRootCmd(&code)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{
		"--config", filepath.Join(home, "none.toml"),
		"--plain", "--color", "never", "--no-summary",
		"sh", "-c", "echo '🤖 AGENT STATUS UPDATE: Builder: done'; exit 2",
	})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if code != 2 {
		t.Fatalf("code = %d, want 2", code)
	}
	if !strings.Contains(out.String(), "⚡ Builder: done") {
		t.Fatalf("output missing status line:\n%s", out.String())
	}
}

func TestRootCommandReportsStartupError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var code int
	cmd := newRootCmd(&code)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(home, "none.toml"), "--plain", "definitely-not-a-real-binary-liveview"})

	err := cmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "start producer") {
		t.Fatalf("Execute error = %v, want start producer failure", err)
	}
	if code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}
