package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stixforge/stixforge/internal/display"
	"github.com/stixforge/stixforge/internal/logging"
	"github.com/stixforge/stixforge/internal/naming"
	"github.com/stixforge/stixforge/internal/textnorm"
)

// ReportFile is the report's filename inside the output directory.
const ReportFile = "batch_report.json"

// Report is the persisted record of one batch run. It is written even when
// the run is interrupted, so partial progress is never lost.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Elapsed   string    `json:"elapsed"`

	Documents int `json:"documents"`
	Modes     int `json:"modes"`
	Total     int `json:"total_tasks"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`
	Skipped   int `json:"skipped"`

	TotalBytes int64 `json:"total_bytes"`

	Interrupted bool `json:"interrupted,omitempty"`
	DryRun      bool `json:"dry_run,omitempty"`

	Outcomes             []TaskOutcome      `json:"outcomes"`
	NormalizationSkipped []textnorm.Skipped `json:"normalization_skipped,omitempty"`
	Overwrites           []naming.Overwrite `json:"overwrites,omitempty"`
}

// NewReport creates a report stamped with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Tally recomputes the counters from the recorded outcomes.
func (r *Report) Tally() {
	r.Total = len(r.Outcomes)
	r.Succeeded, r.Failed, r.TimedOut, r.Skipped = 0, 0, 0, 0
	r.TotalBytes = 0
	for _, o := range r.Outcomes {
		r.TotalBytes += o.Bytes
		switch o.Status {
		case StatusSucceeded:
			r.Succeeded++
		case StatusTimeout:
			r.TimedOut++
		case StatusSkipped:
			r.Skipped++
		default:
			r.Failed++
		}
	}
}

// ZeroSucceeded reports whether no task succeeded. An all-skipped run does
// not count as a failure: there was nothing to do.
func (r *Report) ZeroSucceeded() bool {
	return r.Succeeded == 0 && r.Skipped < r.Total
}

// Save writes the report atomically into dir via a temp file and rename, so
// a crash mid-write never leaves a truncated report.
func (r *Report) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, ReportFile))
}

// LogSummary prints the end-of-run summary.
func (r *Report) LogSummary(log *logging.Logger, elapsed time.Duration) {
	log.Info("==============================")
	if r.Interrupted {
		log.Warn("Run interrupted, partial results below")
	}
	log.Info("Done: %d succeeded, %d failed, %d timed out, %d skipped (of %d tasks)",
		r.Succeeded, r.Failed, r.TimedOut, r.Skipped, r.Total)
	log.Info("  Documents: %d, modes: %d, elapsed: %s",
		r.Documents, r.Modes, display.FormatDuration(elapsed))
	if r.TotalBytes > 0 {
		log.Info("  Bundles written: %s", display.FormatBytes(r.TotalBytes))
	}

	if len(r.Overwrites) > 0 {
		log.Warn("  Overwrote %d existing output file(s)", len(r.Overwrites))
	}
	if len(r.NormalizationSkipped) > 0 {
		log.Warn("  %d input file(s) skipped during normalization", len(r.NormalizationSkipped))
	}
	if r.DryRun {
		log.Info("  Dry run: no engine invocations performed")
	}
}
