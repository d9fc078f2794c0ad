package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != DefaultBackend || cfg.Color != nil {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := "backend: treewalk\ncolor: false\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "treewalk" {
		t.Errorf("backend %s", cfg.Backend)
	}
	if cfg.Color == nil || *cfg.Color {
		t.Errorf("color %v", cfg.Color)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("color: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != DefaultBackend {
		t.Errorf("backend %s", cfg.Backend)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("backend: [not a string\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("malformed yaml should be an error")
	}
}
