package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonny/stayhub/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	root := newRoot(nil)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "stayhub ") {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestActionsCommand(t *testing.T) {
	path := writeConfig(t, `
telegram:
  botToken: "123:abc"
actions:
  lights:
    enabled: true
    endpoint: "http://ha:8123"
  shutdown:
    targets:
      prod: {namespace: web, deployment: frontend}
kubernetes:
  enabled: true
database:
  sqlite:
    path: "/tmp/actions.db"
`)
	root := newRoot(nil)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"actions", "--config", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"assess_guest",
		"lights_off",
		"shutdown_server (always confirmed)",
		"/shutdown -> shutdown_server [confirm]",
		"/assess -> assess_guest",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestActionsCommand_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "telegram:\n  mode: carrier-pigeon\n")
	root := newRoot(nil)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"actions", "--config", path})

	if err := root.Execute(); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnabledActions(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := enabledActions(cfg); len(got) != 1 || got[0] != "assess_guest" {
		t.Errorf("default actions = %v", got)
	}
}

func TestSlashCommands_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions.Commands = []config.CommandConfig{
		{Name: "/Checkout", Action: "lights_off", Parameters: map[string]string{"area": "lobby"}},
	}

	cmds := slashCommands(cfg)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d", len(cmds))
	}
	if cmds[0].Name != "checkout" || cmds[0].Parameters["area"] != "lobby" {
		t.Errorf("unexpected command: %+v", cmds[0])
	}
}

func TestSlashCommands_Defaults(t *testing.T) {
	cmds := slashCommands(config.DefaultConfig())
	if len(cmds) == 0 {
		t.Fatal("expected built-in commands")
	}
}

func TestBuildLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		for _, format := range []string{"json", "text"} {
			if buildLogger(config.LoggingConfig{Level: level, Format: format}) == nil {
				t.Errorf("nil logger for %s/%s", level, format)
			}
		}
	}
}
