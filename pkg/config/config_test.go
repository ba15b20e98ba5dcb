package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	reviDir := filepath.Join(dir, ConfigDir)
	if err := os.MkdirAll(reviDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(reviDir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// Should return zero config
	if cfg.Remote != "" {
		t.Errorf("Remote should be empty, got %q", cfg.Remote)
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL should be empty, got %q", cfg.BaseURL)
	}
	if cfg.TimeoutSeconds != 0 {
		t.Errorf("TimeoutSeconds should be zero, got %d", cfg.TimeoutSeconds)
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
remote: "upstream"
api_version: "7.0"
timeout_seconds: 15
default_status: "completed"
bearer: true
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Remote != "upstream" {
		t.Errorf("Remote = %q, want %q", cfg.Remote, "upstream")
	}
	if cfg.APIVersion != "7.0" {
		t.Errorf("APIVersion = %q, want %q", cfg.APIVersion, "7.0")
	}
	if cfg.TimeoutSeconds != 15 {
		t.Errorf("TimeoutSeconds = %d, want 15", cfg.TimeoutSeconds)
	}
	if cfg.DefaultStatus != "completed" {
		t.Errorf("DefaultStatus = %q, want %q", cfg.DefaultStatus, "completed")
	}
	if !cfg.Bearer {
		t.Error("Bearer should be true")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "remote: [unclosed")

	if _, err := Load(tmpDir); err == nil {
		t.Fatal("Load() should fail on invalid YAML")
	}
}

func TestLoad_FoundInParentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `remote: "upstream"`)

	nested := filepath.Join(tmpDir, "src", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Remote != "upstream" {
		t.Errorf("Remote = %q, want %q (config found via parent walk)", cfg.Remote, "upstream")
	}
}

func TestResolveRemote(t *testing.T) {
	cfg := &ProjectConfig{Remote: "upstream"}

	if got := cfg.ResolveRemote("fork"); got != "fork" {
		t.Errorf("CLI value should win, got %q", got)
	}
	if got := cfg.ResolveRemote(""); got != "upstream" {
		t.Errorf("config value should win over default, got %q", got)
	}
	if got := (&ProjectConfig{}).ResolveRemote(""); got != "origin" {
		t.Errorf("default should be origin, got %q", got)
	}
}

func TestResolveStatusFilter(t *testing.T) {
	cfg := &ProjectConfig{DefaultStatus: "completed"}

	if got := cfg.ResolveStatusFilter("abandoned"); got != "abandoned" {
		t.Errorf("CLI value should win, got %q", got)
	}
	if got := cfg.ResolveStatusFilter(""); got != "completed" {
		t.Errorf("config value should apply, got %q", got)
	}
	if got := (&ProjectConfig{}).ResolveStatusFilter(""); got != "" {
		t.Errorf("empty default lets the client apply its own, got %q", got)
	}
}
