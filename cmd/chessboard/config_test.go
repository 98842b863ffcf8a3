package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/chessboard/board"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if _, err := board.ParseFEN(cfg.FEN); err != nil || cfg.FEN != board.StartFEN {
		t.Errorf("default fen = %q (%v), want start position", cfg.FEN, err)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg, err := parseArgs([]string{
		"-width", "320", "-height", "240", "-fen", "8/8/8/8/8/8/8/4K3",
		"-output", "out.png", "-backend", "vulkan", "-frames", "3", "-v",
	})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FEN != "8/8/8/8/8/8/8/4K3" || cfg.Output != "out.png" {
		t.Errorf("fen/output = %q %q", cfg.FEN, cfg.Output)
	}
	if cfg.Backend != "vulkan" || cfg.Frames != 3 || !cfg.Verbose {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseArgsConfigFile(t *testing.T) {
	path := writeConfig(t, `
width = 512
height = 256
fen = "4k3/8/8/8/8/8/8/4K3"
output = "file.png"
clear = [0.0, 0.0, 0.0, 1.0]
frames = 2
`)
	cfg, err := parseArgs([]string{"-config", path})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg.Width != 512 || cfg.Height != 256 || cfg.Frames != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FEN != "4k3/8/8/8/8/8/8/4K3" || cfg.Output != "file.png" {
		t.Errorf("fen/output = %q %q", cfg.FEN, cfg.Output)
	}
	if cfg.Clear != [4]float64{0, 0, 0, 1} {
		t.Errorf("clear = %v", cfg.Clear)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Backend != "vulkan" {
		t.Errorf("backend = %q, want vulkan", cfg.Backend)
	}
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "width = 512\noutput = \"file.png\"\n")
	cfg, err := parseArgs([]string{"-width", "100", "-config", path})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg.Width != 100 {
		t.Errorf("width = %d, want flag value 100", cfg.Width)
	}
	if cfg.Output != "file.png" {
		t.Errorf("output = %q, want file value", cfg.Output)
	}
}

func TestParseArgsErrors(t *testing.T) {
	unknown := writeConfig(t, "colour = 3\n")
	broken := writeConfig(t, "width = \n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero width", []string{"-width", "0"}, "out of range"},
		{"huge height", []string{"-height", "100000"}, "out of range"},
		{"no frames", []string{"-frames", "0"}, "frames"},
		{"backend", []string{"-backend", "metal"}, "unknown backend"},
		{"software backend", []string{"-backend", "software"}, "unknown backend"},
		{"empty output", []string{"-output", ""}, "no output"},
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "nope.toml")}, "read config"},
		{"unknown key", []string{"-config", unknown}, unknown},
		{"syntax", []string{"-config", broken}, broken},
	}
	for _, tt := range tests {
		_, err := parseArgs(tt.args)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestParseArgsHelp(t *testing.T) {
	_, err := parseArgs([]string{"-h"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want flag.ErrHelp", err)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := defaultConfig()
	opts, err := engineOptions(cfg)
	if err != nil {
		t.Fatalf("engineOptions failed: %v", err)
	}
	if len(opts) != 1 {
		t.Errorf("got %d options, want 1", len(opts))
	}

	cfg.Atlas = filepath.Join(t.TempDir(), "missing.png")
	if _, err := engineOptions(cfg); err == nil {
		t.Error("expected error for missing atlas")
	}
}

func TestConfigFileRejectsSoftwareBackend(t *testing.T) {
	path := writeConfig(t, "backend = \"software\"\n")
	_, err := parseArgs([]string{"-config", path})
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("err = %v, want unknown backend", err)
	}
}
