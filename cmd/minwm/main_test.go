package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/minwm/internal/config"
	"github.com/1broseidon/minwm/internal/daemon"
	"github.com/1broseidon/minwm/internal/ipc"
	"github.com/1broseidon/minwm/internal/session"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	settingFlags(fs)
	if err := fs.Parse([]string{"-capacity", "16", "-log-level", "debug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{"MINWM_CAPACITY": "64", "DISPLAY": ":3"}

	cfg, err := loadConfig(fs, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Capacity != 16 || cfg.SourceOf(config.KeyCapacity) != config.SourceFlag {
		t.Fatalf("expected capacity 16 from flag, got %d from %s", cfg.Capacity, cfg.SourceOf(config.KeyCapacity))
	}
	if cfg.Display != ":3" || cfg.SourceOf(config.KeyDisplay) != config.SourceEnv {
		t.Fatalf("expected display :3 from env, got %q from %s", cfg.Display, cfg.SourceOf(config.KeyDisplay))
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %s", cfg.LogLevel)
	}
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	settingFlags(fs)
	if err := fs.Parse([]string{"-capacity", "1"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := loadConfig(fs, noEnv); err == nil {
		t.Fatalf("expected capacity 1 to be rejected")
	}
}

func TestExitCode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name string
		err  error
		want int
		help bool
	}{
		{"clean", nil, 0, false},
		{"nothing to manage", daemon.ErrNothingToManage, 0, true},
		{"last window closed", session.ErrNoWindows, 0, false},
		{"signal", fmt.Errorf("run: %w", context.Canceled), 0, false},
		{"connection lost", errors.New("connection closed"), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if got := exitCode(tt.err, &out, logger); got != tt.want {
				t.Fatalf("expected exit %d, got %d", tt.want, got)
			}
			if printed := strings.Contains(out.String(), "No windows found!"); printed != tt.help {
				t.Fatalf("guidance printed=%v, want %v", printed, tt.help)
			}
		})
	}
}

func TestNoWindowsHelp_Text(t *testing.T) {
	lines := strings.Split(noWindowsHelp, "\n")
	if lines[1] != `--/\/\in \/\/ /\/\-------------------------------------------------` {
		t.Fatalf("unexpected banner %q", lines[1])
	}
	if !strings.Contains(noWindowsHelp, " xterm -rv -ls +sb -sl 4096 &\n $HOME/minwm\n") {
		t.Fatalf("missing xinitrc example:\n%s", noWindowsHelp)
	}
}

func TestRunKeys_JSON(t *testing.T) {
	var out bytes.Buffer
	if code := runKeys([]string{"--json"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var rows []keyRow
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 bindings, got %d", len(rows))
	}
	byKey := make(map[string]keyRow)
	for _, r := range rows {
		byKey[r.Key] = r
	}
	if r := byKey["cycle"]; r.Keysym != "Tab" || r.Mods != "Mod1" || r.Event != "press" {
		t.Fatalf("unexpected cycle row: %+v", r)
	}
	if r := byKey["virtual-modifier"]; r.Keysym != "Alt_L" || r.Mods != "none" || r.Event != "release" {
		t.Fatalf("unexpected modifier row: %+v", r)
	}
	if r := byKey["move-right"]; r.Keysym != "4" || r.Event != "release" {
		t.Fatalf("unexpected move-right row: %+v", r)
	}
}

func TestRunKeys_YAML(t *testing.T) {
	var out bytes.Buffer
	if code := runKeys(nil, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out.String(), "keysym: Escape") {
		t.Fatalf("expected Escape binding in:\n%s", out.String())
	}
}

func TestRunConfig_Explain(t *testing.T) {
	t.Setenv("MINWM_STARTUP_ATTEMPTS", "5")
	var out bytes.Buffer
	if code := runConfig([]string{"--explain", "-capacity", "32"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	text := out.String()
	for _, want := range []string{"value: \"32\"", "source: flag", "source: env"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
}

func TestNewLogger_PicksHandler(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo, false).Info("hello", "window", "0x1")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, slog.LevelInfo, true).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, slog.LevelWarn, true).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
}

func TestPrintWindows_Table(t *testing.T) {
	var out bytes.Buffer
	printWindows(&out, &ipc.WindowsData{Windows: []ipc.WindowData{
		{Slot: 1, ID: "0x14", Shape: "left", Visible: true, Focused: true},
		{Slot: 2, ID: "0xa", Shape: "full", Offset: 1920},
	}})
	text := out.String()
	for _, want := range []string{"SLOT", "0x14", "current", "+1920", "full"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
}

func TestRunStatus_NotRunning(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	var out bytes.Buffer
	if code := runStatus([]string{"-display", ":42"}, &out); code != 1 {
		t.Fatalf("expected exit 1 without a running window manager, got %d", code)
	}
}
