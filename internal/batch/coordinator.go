// Package batch orchestrates a full run: input normalization, job expansion,
// concurrent task execution, and the persisted run report.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/display"
	"github.com/stixforge/stixforge/internal/engine"
	"github.com/stixforge/stixforge/internal/job"
	"github.com/stixforge/stixforge/internal/logging"
	"github.com/stixforge/stixforge/internal/naming"
	"github.com/stixforge/stixforge/internal/textnorm"
)

// Coordinator drives one batch run end to end.
type Coordinator struct {
	Cfg    *config.Config
	Log    *logging.Logger
	Engine engine.Engine
}

// NewCoordinator builds a coordinator, selecting the remote engine adapter
// when an engine URL is configured and the process adapter otherwise.
func NewCoordinator(cfg *config.Config, log *logging.Logger) *Coordinator {
	var eng engine.Engine
	if cfg.EngineURL != "" {
		eng = engine.NewRemoteEngine(cfg)
	} else {
		eng = engine.NewProcessEngine(cfg)
	}
	return &Coordinator{Cfg: cfg, Log: log, Engine: eng}
}

// Run executes the batch. A returned error is configuration-class (bad
// selectors, unknown mode, unreadable input) and means nothing ran. Task
// failures do not produce an error; they are recorded in the report.
//
// On cancellation the tasks already finished keep their outcomes, unstarted
// tasks are marked skipped, and the partial report is still persisted.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	cfg := c.Cfg
	start := time.Now()

	report := NewReport()
	report.DryRun = cfg.DryRun

	dirRes, err := textnorm.NormalizeDir(cfg.InputDir, cfg.CleanDir, cfg.Verbose, c.Log)
	if err != nil {
		return nil, err
	}
	report.NormalizationSkipped = dirRes.Skipped
	if len(dirRes.Cleaned) == 0 {
		return nil, fmt.Errorf("no input files survived normalization")
	}

	spec, err := job.Expand(cfg, dirRes.Cleaned)
	if err != nil {
		return nil, err
	}
	report.Documents = len(spec.Documents)
	report.Modes = len(spec.Modes)

	c.logHeader(spec)

	overwrites := naming.NewOverwriteLog()
	exec := &Executor{
		Engine:       c.Engine,
		EngineName:   cfg.EngineName,
		OutputDir:    cfg.OutputDir,
		Timeout:      cfg.TaskTimeout,
		SkipExisting: cfg.SkipExisting,
		DryRun:       cfg.DryRun,
		Overwrites:   overwrites,
	}

	outcomes := make([]TaskOutcome, len(spec.Tasks))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, task := range spec.Tasks {
		i, task := i, task
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i] = TaskOutcome{
					Document: task.Document,
					Mode:     task.Mode.Name,
					Status:   StatusSkipped,
					Error:    "interrupted",
				}
				return nil
			}
			n := done.Add(1)
			c.Log.Info("[%d/%d] %s (mode: %s)",
				n, len(spec.Tasks), filepath.Base(task.Document), task.Mode.Name)

			outcomes[i] = exec.Execute(gctx, task)
			c.logOutcome(outcomes[i])
			return nil
		})
	}
	_ = g.Wait() // Task goroutines never return errors.

	if ctx.Err() != nil {
		report.Interrupted = true
		c.Log.Warn("Interrupted")
	}

	report.Outcomes = outcomes
	report.Overwrites = overwrites.Events()
	report.Tally()
	elapsed := time.Since(start)
	report.Elapsed = display.FormatDuration(elapsed)

	if err := report.Save(cfg.OutputDir); err != nil {
		c.Log.Warn("Could not write %s: %v", ReportFile, err)
	}
	report.LogSummary(c.Log, elapsed)
	return report, nil
}

func (c *Coordinator) logHeader(spec *job.Spec) {
	cfg := c.Cfg
	modeNames := make([]string, len(spec.Modes))
	for i, m := range spec.Modes {
		modeNames[i] = m.Name
	}
	c.Log.Info("Found %d documents, %d modes: %d tasks",
		len(spec.Documents), len(spec.Modes), len(spec.Tasks))
	c.Log.Info("Modes: %v", modeNames)
	c.Log.Info("Extractions: %d selected", len(spec.Tasks[0].Extractions))
	if cfg.EngineURL != "" {
		c.Log.Info("Engine: remote %s", cfg.EngineURL)
	} else {
		c.Log.Info("Engine: %s (work dir %s)", cfg.EngineBin, cfg.EngineWorkDir)
	}
	c.Log.Info("Workers: %d, per-task timeout: %s", cfg.Workers, cfg.TaskTimeout)
	if cfg.DryRun {
		c.Log.Info("Dry run: engine will not be invoked")
	}
}

func (c *Coordinator) logOutcome(o TaskOutcome) {
	base := filepath.Base(o.OutputPath)
	switch {
	case o.Status == StatusSucceeded && c.Cfg.DryRun:
		c.Log.Success("[DRY] Would produce %s", base)
	case o.Status == StatusSucceeded:
		c.Log.Success("  -> %s (%d objects) in %s",
			base, o.ObjectCount, display.FormatDuration(o.Elapsed))
	case o.Status == StatusSkipped:
		c.Log.Warn("Skip (%s): %s", o.Error, base)
	case o.Status == StatusTimeout:
		c.Log.Error("Timeout: %s (mode: %s)", filepath.Base(o.Document), o.Mode)
	default:
		c.Log.Error("Failed: %s (mode: %s): %s",
			filepath.Base(o.Document), o.Mode, display.Truncate(o.Error, 200))
		if o.Diagnosis != "" && o.Diagnosis != engine.DiagUnknown {
			c.Log.Error("  Diagnosis: %s", o.Diagnosis)
		}
	}
}
