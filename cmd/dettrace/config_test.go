package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultWithNoPath(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Seccomp.Default != "trace" {
		t.Fatalf("expected default seccomp action %q, got %q", "trace", cfg.Seccomp.Default)
	}
	if cfg.DebugLevel != 0 {
		t.Fatalf("expected debug level 0, got %d", cfg.DebugLevel)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	contents := `
debug_level: 2
seccomp:
  allow:
    - read
    - write
  trace:
    - open
    - execve
  default: kill
rlimits:
  cpu_seconds: 5
  open_files: 64
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DebugLevel != 2 {
		t.Fatalf("expected debug level 2, got %d", cfg.DebugLevel)
	}
	if cfg.Seccomp.Default != "kill" {
		t.Fatalf("expected default action %q, got %q", "kill", cfg.Seccomp.Default)
	}
	if len(cfg.Seccomp.Allow) != 2 || cfg.Seccomp.Allow[0] != "read" {
		t.Fatalf("unexpected allow list: %v", cfg.Seccomp.Allow)
	}
	if cfg.RLimits.CPU != 5 || cfg.RLimits.OpenFile != 64 {
		t.Fatalf("unexpected rlimits: %+v", cfg.RLimits)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig("/no/such/policy.yaml"); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
