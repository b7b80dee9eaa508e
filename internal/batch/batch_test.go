package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/engine"
	"github.com/stixforge/stixforge/internal/job"
	"github.com/stixforge/stixforge/internal/logging"
	"github.com/stixforge/stixforge/internal/naming"
)

// fakeEngine implements engine.Engine with scriptable per-task behavior.
type fakeEngine struct {
	mu    sync.Mutex
	calls int
	// decide returns the object count, or an error to fail the task.
	decide func(task job.Task) (int, error)
}

func (f *fakeEngine) Extract(ctx context.Context, task job.Task, outputPath string) (*engine.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count, err := f.decide(task)
	if err != nil {
		return &engine.Result{Stderr: err.Error()}, fmt.Errorf("%w: %v", engine.ErrEngineFailed, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, []byte(`{"type":"bundle","objects":[]}`), 0644); err != nil {
		return nil, err
	}
	return &engine.Result{OutputPath: outputPath, ObjectCount: count}, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingEngine waits for ctx cancellation, simulating a hung engine.
type blockingEngine struct{}

func (blockingEngine) Extract(ctx context.Context, task job.Task, outputPath string) (*engine.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testSetup(t *testing.T, docs ...string) (*config.Config, *logging.Logger) {
	t.Helper()
	root := t.TempDir()
	inputDir := filepath.Join(root, "in")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, d := range docs {
		if err := os.WriteFile(filepath.Join(inputDir, d), []byte("APT41 used CVE-2024-1234"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.CleanDir = filepath.Join(root, "clean")
	cfg.Modes = []string{"standard"}
	cfg.Workers = 2
	cfg.ColorMode = config.ColorNever

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	return &cfg, log
}

func TestRun_AllSucceed(t *testing.T) {
	cfg, log := testSetup(t, "a.txt", "b.txt")
	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 5, nil }}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 0 {
		t.Errorf("succeeded=%d failed=%d, want 2/0", report.Succeeded, report.Failed)
	}
	if report.ZeroSucceeded() {
		t.Error("ZeroSucceeded true despite successes")
	}
	if eng.callCount() != 2 {
		t.Errorf("engine called %d times, want 2", eng.callCount())
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	cfg, log := testSetup(t, "good.txt", "bad.txt")
	eng := &fakeEngine{decide: func(task job.Task) (int, error) {
		if strings.Contains(task.Document, "bad") {
			return 0, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return 3, nil
	}}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error despite task-level failure: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 1/1", report.Succeeded, report.Failed)
	}
	if report.ZeroSucceeded() {
		t.Error("partial success must not count as zero-success")
	}

	// Failed task carries a diagnosis.
	for _, o := range report.Outcomes {
		if o.Status == StatusFailed && o.Diagnosis != engine.DiagMissingCredentials {
			t.Errorf("diagnosis = %s, want missing_credentials", o.Diagnosis)
		}
	}
}

func TestRun_AllFailIsZeroSucceeded(t *testing.T) {
	cfg, log := testSetup(t, "a.txt")
	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 0, fmt.Errorf("boom") }}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !report.ZeroSucceeded() {
		t.Error("ZeroSucceeded false with no successes")
	}
}

func TestRun_UnknownModeFailsBeforeExecution(t *testing.T) {
	cfg, log := testSetup(t, "a.txt")
	cfg.Modes = []string{"standard", "gpt5"}
	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 1, nil }}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	if _, err := c.Run(context.Background()); err == nil {
		t.Fatal("expected configuration error")
	}
	if eng.callCount() != 0 {
		t.Errorf("engine called %d times before config validation failed", eng.callCount())
	}
}

func TestRun_DryRunSkipsEngine(t *testing.T) {
	cfg, log := testSetup(t, "a.txt", "b.txt")
	cfg.DryRun = true
	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 1, nil }}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if eng.callCount() != 0 {
		t.Errorf("engine invoked %d times during dry run", eng.callCount())
	}
	if report.Succeeded != 2 {
		t.Errorf("succeeded=%d, want 2", report.Succeeded)
	}
}

func TestRun_SkipExisting(t *testing.T) {
	cfg, log := testSetup(t, "a.txt")
	cfg.SkipExisting = true
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := naming.OutputPath(cfg.OutputDir, "a", cfg.EngineName, "standard")
	if err := os.WriteFile(existing, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 1, nil }}
	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if eng.callCount() != 0 {
		t.Error("engine invoked for an existing output")
	}
	if report.Skipped != 1 {
		t.Errorf("skipped=%d, want 1", report.Skipped)
	}
	if report.ZeroSucceeded() {
		t.Error("all-skipped run must not be a zero-success failure")
	}
}

func TestRun_RecordsOverwrites(t *testing.T) {
	cfg, log := testSetup(t, "a.txt")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := naming.OutputPath(cfg.OutputDir, "a", cfg.EngineName, "standard")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 1, nil }}
	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Overwrites) != 1 {
		t.Fatalf("overwrites=%d, want 1", len(report.Overwrites))
	}
	if report.Overwrites[0].Path != existing {
		t.Errorf("overwrite path = %s", report.Overwrites[0].Path)
	}
}

func TestRun_PersistsReport(t *testing.T) {
	cfg, log := testSetup(t, "a.txt")
	eng := &fakeEngine{decide: func(job.Task) (int, error) { return 2, nil }}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, ReportFile))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var saved Report
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("report not valid JSON: %v", err)
	}
	if saved.Succeeded != 1 || saved.RunID == "" {
		t.Errorf("saved report = %+v", saved)
	}
}

func TestRun_CancellationPreservesPartialReport(t *testing.T) {
	cfg, log := testSetup(t, "a.txt", "b.txt", "c.txt", "d.txt")
	cfg.Workers = 1

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	eng := &fakeEngine{decide: func(job.Task) (int, error) {
		once.Do(cancel) // interrupt after the first task
		return 1, nil
	}}

	c := &Coordinator{Cfg: cfg, Log: log, Engine: eng}
	report, err := c.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Interrupted {
		t.Error("report not marked interrupted")
	}
	if report.Succeeded < 1 {
		t.Error("finished task lost from report")
	}
	if report.Succeeded+report.Failed+report.Skipped+report.TimedOut != 4 {
		t.Errorf("outcomes unaccounted for: %+v", report)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, ReportFile)); statErr != nil {
		t.Error("partial report not persisted")
	}
}

func TestExecutor_Timeout(t *testing.T) {
	exec := &Executor{
		Engine:     blockingEngine{},
		EngineName: "txt2stix",
		OutputDir:  t.TempDir(),
		Timeout:    20 * time.Millisecond,
		Overwrites: naming.NewOverwriteLog(),
	}
	mode, _ := job.LookupMode("standard")
	outcome := exec.Execute(context.Background(), job.Task{
		Document: "/clean/slow.txt",
		Stem:     "slow",
		Mode:     mode,
	})
	if outcome.Status != StatusTimeout {
		t.Errorf("status = %s, want timeout", outcome.Status)
	}
}

func TestReport_Tally(t *testing.T) {
	r := NewReport()
	r.Outcomes = []TaskOutcome{
		{Status: StatusSucceeded},
		{Status: StatusFailed},
		{Status: StatusTimeout},
		{Status: StatusSkipped},
		{Status: StatusSucceeded},
	}
	r.Tally()
	if r.Total != 5 || r.Succeeded != 2 || r.Failed != 1 || r.TimedOut != 1 || r.Skipped != 1 {
		t.Errorf("tally = %+v", r)
	}
}
