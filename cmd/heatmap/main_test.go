package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunWritesFrames(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{
		"-backend", "software",
		"-scenario", "serpent",
		"-frames", "5",
		"-every", "2",
		"-cols", "16", "-rows", "8",
		"-width", "32", "-height", "16",
		"-out", dir,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Frames 0, 2 and 4 (the last).
	for _, name := range []string{"frame-00000.png", "frame-00002.png", "frame-00004.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "frame-00001.png")); err == nil {
		t.Error("frame 1 should not be written")
	}
}

func TestRunPresetFitsData(t *testing.T) {
	dir := t.TempDir()
	err := run([]string{
		"-backend", "software",
		"-scenario", "random",
		"-preset", "viridis",
		"-frames", "1",
		"-cols", "4", "-rows", "4",
		"-width", "8", "-height", "8",
		"-format", "tga",
		"-out", dir,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame-00000.tga")); err != nil {
		t.Error(err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown backend", []string{"-backend", "nope", "-frames", "1"}},
		{"unknown scenario", []string{"-backend", "software", "-scenario", "nope"}},
		{"bad format", []string{"-format", "gif"}},
		{"missing config", []string{"-config", "/nonexistent/heatmap.toml"}},
		{"bad flag", []string{"-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
