// Package job turns a validated configuration and a list of normalized input
// documents into the concrete task list a batch run executes. Expansion is
// validate-then-expand: every mode name and extraction selector must resolve
// before the first task is produced.
package job

import (
	"path/filepath"
	"strings"

	"github.com/stixforge/stixforge/internal/config"
)

// Metadata is the shared per-run metadata stamped onto every task and
// forwarded to the engine.
type Metadata struct {
	TLPLevel   config.TLPLevel
	Confidence int // config.ConfidenceUnset when absent.
	Labels     []string
}

// Task is one unit of work: a single normalized document processed under a
// single mode. Tasks are independent of each other by construction.
type Task struct {
	Document    string // Absolute path to the normalized input file.
	Stem        string // Document filename without extension.
	Mode        Mode
	Extractions []string // Resolved catalog identifiers, in catalog order.
	Meta        Metadata
}

// Spec is a fully expanded batch: the task list plus the inputs it was
// derived from, for reporting.
type Spec struct {
	Documents []string
	Modes     []Mode
	Tasks     []Task
}

// Stem returns the filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
