// Package check provides system diagnostics (the check subcommand) and
// pre-batch dependency validation (CheckDeps) for the engine binary,
// AI-provider credentials, and directory access.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/job"
)

// Sentinel errors returned by CheckDeps when a requirement is missing.
var (
	ErrEngineNotFound     = errors.New("engine binary not found on PATH")
	ErrMissingCredentials = errors.New("missing AI provider credentials")
	ErrOutputNotWritable  = errors.New("output directory is not writable")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive diagnostics flow: engine availability, each
// registered mode's credential state, and directory access. Informational
// only, it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkEngine(cfg, log)
	checkCredentials(log)
	checkDirs(cfg, log)
}

// checkEngine verifies the engine binary is on PATH (or a URL is configured)
// and logs its version string when obtainable.
func checkEngine(cfg *config.Config, log Logger) {
	if cfg.EngineURL != "" {
		log.Info("engine: remote endpoint %s", cfg.EngineURL)
		return
	}
	path, err := exec.LookPath(cfg.EngineBin)
	if err != nil {
		log.Error("%s not found on PATH", cfg.EngineBin)
		return
	}
	out, err := exec.Command(cfg.EngineBin, "--version").Output()
	if err != nil {
		log.Success("engine: %s (version unavailable)", path)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("engine: %s", firstLine)
}

// checkCredentials reports the credential state for every AI-backed mode in
// the registry, whether or not the current run selects it.
func checkCredentials(log Logger) {
	log.Info("AI provider credentials:")
	seen := make(map[string]bool)
	for _, name := range job.ModeNames() {
		mode, err := job.LookupMode(name)
		if err != nil || !mode.IsAI() || seen[mode.EnvKey] {
			continue
		}
		seen[mode.EnvKey] = true
		if os.Getenv(mode.EnvKey) != "" {
			log.Success("  %s set (%s)", mode.EnvKey, mode.Provider())
		} else {
			log.Warn("  %s not set (%s modes unavailable)", mode.EnvKey, mode.Provider())
		}
	}
}

// checkDirs reports input readability and output writability.
func checkDirs(cfg *config.Config, log Logger) {
	if cfg.InputDir != "" {
		if info, err := os.Stat(cfg.InputDir); err != nil || !info.IsDir() {
			log.Error("input directory %s not accessible", cfg.InputDir)
		} else {
			log.Success("input directory: %s", cfg.InputDir)
		}
	}
	if cfg.OutputDir != "" {
		if err := probeWritable(cfg.OutputDir); err != nil {
			log.Error("output directory %s not writable: %v", cfg.OutputDir, err)
		} else {
			log.Success("output directory: %s", cfg.OutputDir)
		}
	}
}

// CheckDeps is the pre-batch validation: the engine must be reachable, every
// selected AI mode must have its provider credential set, and the output
// directory must be writable. Returns a sentinel error on the first failure.
func CheckDeps(cfg *config.Config) error {
	if cfg.EngineURL == "" {
		if _, err := exec.LookPath(cfg.EngineBin); err != nil {
			return fmt.Errorf("%w: %s", ErrEngineNotFound, cfg.EngineBin)
		}
	}

	modes, err := job.LookupModes(cfg.Modes)
	if err != nil {
		return err
	}
	for _, mode := range job.AIModes(modes) {
		if os.Getenv(mode.EnvKey) == "" {
			return fmt.Errorf("%w: %s requires %s", ErrMissingCredentials, mode.Name, mode.EnvKey)
		}
	}

	if err := probeWritable(cfg.OutputDir); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	return nil
}

// probeWritable creates the directory if needed and verifies a file can be
// created inside it.
func probeWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
