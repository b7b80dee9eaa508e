// Package engine invokes the external txt2stix engine for a single task and
// collects the produced STIX bundle. Two adapters exist: a process adapter
// that shells out to the engine binary, and a remote adapter that posts the
// document to an HTTP endpoint. Both write the bundle to the task's canonical
// output path.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/stixforge/stixforge/internal/job"
)

// Engine runs one task to completion and places the bundle at outputPath.
type Engine interface {
	Extract(ctx context.Context, task job.Task, outputPath string) (*Result, error)
}

// Result describes a completed extraction.
type Result struct {
	OutputPath  string
	ObjectCount int // STIX objects in the produced bundle. Zero is valid.
	Stderr      string
	Elapsed     time.Duration
}

// Invocation failure sentinels. Wrapped with task detail by the adapters.
var (
	ErrEngineFailed     = errors.New("engine invocation failed")
	ErrNoBundleProduced = errors.New("engine produced no bundle")
	ErrInvalidBundle    = errors.New("engine produced an invalid bundle")
)

// nameLimit caps the --name argument forwarded to the engine.
const nameLimit = 72

func engineName(stem string) string {
	if len(stem) > nameLimit {
		return stem[:nameLimit]
	}
	return stem
}
