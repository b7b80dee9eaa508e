package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/job"
)

// Runner lets tests stub the external engine command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// ProcessEngine runs the engine binary as a subprocess. The engine writes its
// bundle into a work directory under a name of its own choosing, so each
// invocation snapshots the directory before running and claims whichever
// bundle file appears afterward.
type ProcessEngine struct {
	Bin     string // Engine binary, resolved on PATH.
	WorkDir string // Directory the engine drops bundle--*.json into.
	Runner  Runner

	// The work directory is shared by all workers. Invocations are
	// serialized so the snapshot diff attributes each bundle to the task
	// that produced it.
	mu sync.Mutex
}

// NewProcessEngine builds a process adapter from config.
func NewProcessEngine(cfg *config.Config) *ProcessEngine {
	return &ProcessEngine{
		Bin:     cfg.EngineBin,
		WorkDir: cfg.EngineWorkDir,
		Runner:  execRunner{},
	}
}

// Extract runs the engine for one task and moves the produced bundle to
// outputPath. The bundle is structurally validated before the move.
func (e *ProcessEngine) Extract(ctx context.Context, task job.Task, outputPath string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	before, err := e.snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: reading work dir: %v", ErrEngineFailed, err)
	}

	args := buildArgs(task)
	_, stderr, runErr := e.Runner.Run(ctx, e.Bin, args...)
	elapsed := time.Since(start)

	bundlePath, findErr := e.newBundle(before)
	if runErr != nil {
		e.sweep(before)
		if ctx.Err() != nil {
			return &Result{Stderr: string(stderr), Elapsed: elapsed}, ctx.Err()
		}
		return &Result{Stderr: string(stderr), Elapsed: elapsed},
			fmt.Errorf("%w: %v", ErrEngineFailed, runErr)
	}
	if findErr != nil {
		return &Result{Stderr: string(stderr), Elapsed: elapsed}, findErr
	}

	raw, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading bundle: %v", ErrEngineFailed, err)
	}
	count, err := ValidateBundle(raw)
	if err != nil {
		os.Remove(bundlePath)
		return &Result{Stderr: string(stderr), Elapsed: elapsed}, err
	}

	if err := moveFile(bundlePath, outputPath); err != nil {
		return nil, fmt.Errorf("%w: placing bundle: %v", ErrEngineFailed, err)
	}
	e.sweep(before)

	return &Result{
		OutputPath:  outputPath,
		ObjectCount: count,
		Stderr:      string(stderr),
		Elapsed:     elapsed,
	}, nil
}

// buildArgs assembles the engine argv for a task.
func buildArgs(task job.Task) []string {
	args := []string{
		"--input_file", task.Document,
		"--name", engineName(task.Stem),
		"--relationship_mode", string(task.Mode.RelationshipMode),
	}
	if len(task.Extractions) > 0 {
		args = append(args, "--use_extractions", strings.Join(task.Extractions, ","))
	}
	if task.Mode.IsAI() {
		args = append(args,
			"--ai_settings_extractions", task.Mode.AIModel,
			"--ai_settings_relationships", task.Mode.AIModel,
		)
	}
	args = append(args, "--tlp_level", string(task.Meta.TLPLevel))
	if task.Meta.Confidence != config.ConfidenceUnset {
		args = append(args, "--confidence", strconv.Itoa(task.Meta.Confidence))
	}
	if len(task.Meta.Labels) > 0 {
		args = append(args, "--labels", strings.Join(task.Meta.Labels, ","))
	}
	return args
}

// snapshot returns the bundle files currently in the work directory.
func (e *ProcessEngine) snapshot() (map[string]bool, error) {
	matches, err := filepath.Glob(filepath.Join(e.WorkDir, "bundle--*.json"))
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(matches))
	for _, m := range matches {
		set[m] = true
	}
	return set, nil
}

// newBundle finds the single bundle that appeared since the snapshot.
func (e *ProcessEngine) newBundle(before map[string]bool) (string, error) {
	after, err := e.snapshot()
	if err != nil {
		return "", fmt.Errorf("%w: reading work dir: %v", ErrEngineFailed, err)
	}
	var fresh []string
	for path := range after {
		if !before[path] {
			fresh = append(fresh, path)
		}
	}
	if len(fresh) == 0 {
		return "", ErrNoBundleProduced
	}
	if len(fresh) > 1 {
		// Claim the newest and let sweep clear the rest.
		latest := fresh[0]
		latestMod := modTime(latest)
		for _, f := range fresh[1:] {
			if m := modTime(f); m.After(latestMod) {
				latest, latestMod = f, m
			}
		}
		return latest, nil
	}
	return fresh[0], nil
}

// sweep removes bundle files that appeared during this invocation but were
// not claimed, so a leftover never gets attributed to a later task.
func (e *ProcessEngine) sweep(before map[string]bool) {
	after, err := e.snapshot()
	if err != nil {
		return
	}
	for path := range after {
		if !before[path] {
			os.Remove(path)
		}
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// moveFile renames src to dst, falling back to copy-and-remove when the two
// paths live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
