package check

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stixforge/stixforge/internal/config"
)

func depsConfig(t *testing.T, modes ...string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.EngineURL = "http://localhost:8080/extract" // skip PATH lookup
	cfg.OutputDir = t.TempDir()
	cfg.Modes = modes
	return &cfg
}

func TestCheckDeps_StandardModeNeedsNoCredentials(t *testing.T) {
	cfg := depsConfig(t, "standard")
	if err := CheckDeps(cfg); err != nil {
		t.Fatalf("CheckDeps: %v", err)
	}
}

func TestCheckDeps_AIModeRequiresCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := depsConfig(t, "standard", "claude")
	err := CheckDeps(cfg)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestCheckDeps_AIModeWithCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	cfg := depsConfig(t, "claude")
	if err := CheckDeps(cfg); err != nil {
		t.Fatalf("CheckDeps: %v", err)
	}
}

func TestCheckDeps_EngineNotFound(t *testing.T) {
	cfg := depsConfig(t, "standard")
	cfg.EngineURL = ""
	cfg.EngineBin = "definitely-not-a-real-binary-xyz"
	err := CheckDeps(cfg)
	if !errors.Is(err, ErrEngineNotFound) {
		t.Fatalf("error = %v, want ErrEngineNotFound", err)
	}
}

func TestCheckDeps_UnknownModeSurfaces(t *testing.T) {
	cfg := depsConfig(t, "gpt5")
	if err := CheckDeps(cfg); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestProbeWritable_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := probeWritable(dir); err != nil {
		t.Fatalf("probeWritable: %v", err)
	}
}
