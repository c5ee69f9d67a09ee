package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "reflow-app" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Metrics || cfg.Debug {
		t.Error("metrics and debug should default to off")
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := "name: editor\naddr: \":9000\"\nmetrics: true\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "editor" {
		t.Errorf("expected name from file, got %q", cfg.Name)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected addr from file, got %q", cfg.Addr)
	}
	if !cfg.Metrics {
		t.Error("expected metrics enabled")
	}
	if cfg.Debug {
		t.Error("debug was not set in the file")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr to survive, got %q", cfg.Addr)
	}
	if !cfg.Debug {
		t.Error("expected debug from file")
	}
}

func TestLoadRejectsEmptyAddr(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("addr: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an empty addr")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("addr: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}
