// Package config holds runtime configuration: defaults, validation, and the
// enum types for validated string fields. The CLI layer binds flags onto a
// Config; everything downstream receives it by pointer.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// TLPLevel is the traffic-light classification applied to produced bundles.
type TLPLevel string

const (
	TLPClear       TLPLevel = "clear" // Default: no disclosure restriction.
	TLPGreen       TLPLevel = "green"
	TLPAmber       TLPLevel = "amber"
	TLPAmberStrict TLPLevel = "amber_strict"
	TLPRed         TLPLevel = "red"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Worker pool bounds. A --workers value above MaxWorkers is a configuration
// error, not something to silently clamp: the cap exists to respect engine
// rate limits and local file-handle ceilings.
const (
	DefaultWorkers = 4
	MaxWorkers     = 32
)

// ConfidenceUnset marks an absent confidence score. An explicit 0 is a valid
// score and is forwarded to the engine.
const ConfidenceUnset = -1

// Sentinel validation errors. These are configuration-class failures: they
// abort the whole batch before any task executes.
var (
	ErrConfidenceOutOfRange = errors.New("confidence must be between 0 and 100")
	ErrWorkersOutOfRange    = fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by CLI flag binding before being passed (by pointer) to
// packages that need it. Fields are grouped by concern with inline
// documentation of defaults.
type Config struct {
	// Paths.
	InputDir  string
	OutputDir string
	CleanDir  string // Default: derived sibling "clean_<input-basename>".

	// Job selection.
	Modes       []string // Required: backend mode names from the mode registry.
	Extractions []string // Extraction selectors. Default: ["pattern_*"].

	// Shared task metadata.
	TLPLevel   TLPLevel // Default: "clear".
	Confidence int      // Default: ConfidenceUnset. Valid range 0-100.
	Labels     []string // Optional free-form labels.

	// Engine invocation.
	EngineBin     string        // Default: "txt2stix". Resolved on PATH.
	EngineName    string        // Default: "txt2stix". Appears in output filenames.
	EngineURL     string        // Optional remote endpoint used for AI modes.
	EngineWorkDir string        // Directory the engine drops bundle--*.json into. Default: "output".
	TaskTimeout   time.Duration // Default: 5m per task.

	// Concurrency.
	Workers int // Default: 4. Capped at MaxWorkers.

	// Behavior flags.
	DryRun       bool
	SkipExisting bool // Skip tasks whose canonical output already exists.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Diagnostics mode: path requirements are relaxed.
}

// DefaultConfig returns a Config with all defaults matching the legacy batch
// driver's behavior. Used as the base before CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		Extractions:   []string{"pattern_*"},
		TLPLevel:      TLPClear,
		Confidence:    ConfidenceUnset,
		EngineBin:     "txt2stix",
		EngineName:    "txt2stix",
		EngineWorkDir: "output",
		TaskTimeout:   5 * time.Minute,
		Workers:       DefaultWorkers,
		ColorMode:     ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// DeriveCleanDir returns the default normalized-input location for an input
// directory: a sibling directory named "clean_<basename>".
func DeriveCleanDir(inputDir string) string {
	inputDir = NormalizeDirArg(inputDir)
	return filepath.Join(filepath.Dir(inputDir), "clean_"+filepath.Base(inputDir))
}

// Validate checks enum fields, the confidence range, and the worker bound.
// When not in CheckOnly mode it also requires the input and output
// directories and at least one mode. Mode-name resolution against the
// registry happens later, during job expansion.
func (c *Config) Validate() error {
	switch c.TLPLevel {
	case TLPClear, TLPGreen, TLPAmber, TLPAmberStrict, TLPRed:
		// valid
	default:
		return fmt.Errorf("invalid TLP level %q (use clear, green, amber, amber_strict, or red)", c.TLPLevel)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always', or 'never')")
	}

	if c.Confidence != ConfidenceUnset && (c.Confidence < 0 || c.Confidence > 100) {
		return ErrConfidenceOutOfRange
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return ErrWorkersOutOfRange
	}
	if c.TaskTimeout <= 0 {
		return errors.New("task timeout must be positive")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need both input and output directories")
	}
	if len(c.Modes) == 0 {
		return errors.New("need at least one mode (--modes)")
	}
	if c.CleanDir == "" {
		c.CleanDir = DeriveCleanDir(c.InputDir)
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents the batch from discovering
// its own output files on a re-run. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

// SplitList splits a comma-separated flag value into trimmed, non-empty
// elements. Order is preserved.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
