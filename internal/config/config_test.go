package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"pixdupe/internal/config"
)

func TestLoad_DefaultsApplied(t *testing.T) {
	f := filepath.Join(t.TempDir(), "pixdupe.yaml")
	if err := os.WriteFile(f, []byte("keep_dir: out\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != config.DefaultThreads {
		t.Errorf("Threads = %d, want default %d", cfg.Threads, config.DefaultThreads)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.KeepDir != "out" {
		t.Errorf("KeepDir = %q, want %q", cfg.KeepDir, "out")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != config.DefaultThreads {
		t.Errorf("Threads = %d, want default %d", cfg.Threads, config.DefaultThreads)
	}
	if cfg.KeepDir != "" {
		t.Errorf("KeepDir = %q, want empty (delete mode)", cfg.KeepDir)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	f := filepath.Join(t.TempDir(), "pixdupe.yaml")
	if err := os.WriteFile(f, []byte("no_such_field: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(f); err == nil {
		t.Error("expected error for unknown config field")
	}
}

func TestValidate_ThreadCount(t *testing.T) {
	cfg := &config.Config{Root: t.TempDir(), Threads: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threads < 1")
	}
	cfg.Threads = -3
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative threads")
	}
	cfg.Threads = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with threads=1: %v", err)
	}
}

func TestValidate_MissingRoot(t *testing.T) {
	cfg := &config.Config{Root: filepath.Join(t.TempDir(), "gone"), Threads: 4}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing scan root")
	}
}

func TestValidate_CreatesKeepDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "nested")
	cfg := &config.Config{Root: t.TempDir(), Threads: 2, KeepDir: dest}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		t.Errorf("destination %q was not created", dest)
	}
}
