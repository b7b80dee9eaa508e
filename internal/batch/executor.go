package batch

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/stixforge/stixforge/internal/engine"
	"github.com/stixforge/stixforge/internal/job"
	"github.com/stixforge/stixforge/internal/naming"
)

// Status classifies how a single task ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimeout   Status = "timeout"
	StatusSkipped   Status = "skipped"
)

// TaskOutcome is the recorded result of one task. Exactly one is produced
// per expanded task, whatever happens.
type TaskOutcome struct {
	Document    string           `json:"document"`
	Mode        string           `json:"mode"`
	OutputPath  string           `json:"output_path,omitempty"`
	Status      Status           `json:"status"`
	ObjectCount int              `json:"object_count"`
	Bytes       int64            `json:"bytes,omitempty"`
	Diagnosis   engine.Diagnosis `json:"diagnosis,omitempty"`
	Error       string           `json:"error,omitempty"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
}

// Executor runs one task in isolation: whatever the engine does, the outcome
// is recorded and no error escapes to abort sibling tasks.
type Executor struct {
	Engine       engine.Engine
	EngineName   string
	OutputDir    string
	Timeout      time.Duration
	SkipExisting bool
	DryRun       bool
	Overwrites   *naming.OverwriteLog
}

// Execute runs a single task under its own timeout and returns its outcome.
func (e *Executor) Execute(ctx context.Context, task job.Task) TaskOutcome {
	outputPath := naming.OutputPath(e.OutputDir, task.Stem, e.EngineName, task.Mode.Name)
	outcome := TaskOutcome{
		Document:   task.Document,
		Mode:       task.Mode.Name,
		OutputPath: outputPath,
	}

	if e.SkipExisting {
		if _, err := os.Stat(outputPath); err == nil {
			outcome.Status = StatusSkipped
			outcome.Error = "output exists"
			return outcome
		}
	}

	e.Overwrites.Claim(outputPath, task.Document, task.Mode.Name)

	if e.DryRun {
		outcome.Status = StatusSucceeded
		return outcome
	}

	taskCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	res, err := e.Engine.Extract(taskCtx, task, outputPath)
	if res != nil {
		outcome.Elapsed = res.Elapsed
	}
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			outcome.Status = StatusTimeout
		}
		if res != nil && res.Stderr != "" {
			outcome.Diagnosis = engine.Diagnose(res.Stderr)
		}
		return outcome
	}

	outcome.Status = StatusSucceeded
	outcome.ObjectCount = res.ObjectCount
	if info, statErr := os.Stat(outputPath); statErr == nil {
		outcome.Bytes = info.Size()
	}
	return outcome
}
