package job

import (
	"fmt"

	"github.com/stixforge/stixforge/internal/catalog"
	"github.com/stixforge/stixforge/internal/config"
)

// Expand builds the task list for a batch run. Mode names and extraction
// selectors are resolved up front so a configuration mistake fails the run
// before anything executes.
//
// Order is document-major, mode-minor: all modes for the first document, then
// all modes for the second, and so on. The same order on every run with the
// same inputs.
func Expand(cfg *config.Config, documents []string) (*Spec, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents to process")
	}

	modes, err := LookupModes(cfg.Modes)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateModes(modes); err != nil {
		return nil, err
	}

	extractions, err := catalog.Default.Resolve(cfg.Extractions)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		TLPLevel:   cfg.TLPLevel,
		Confidence: cfg.Confidence,
		Labels:     cfg.Labels,
	}

	spec := &Spec{
		Documents: documents,
		Modes:     modes,
		Tasks:     make([]Task, 0, len(documents)*len(modes)),
	}
	for _, doc := range documents {
		stem := Stem(doc)
		for _, mode := range modes {
			spec.Tasks = append(spec.Tasks, Task{
				Document:    doc,
				Stem:        stem,
				Mode:        mode,
				Extractions: extractions,
				Meta:        meta,
			})
		}
	}
	return spec, nil
}

// checkDuplicateModes rejects the same mode listed twice: duplicate tasks
// would race on a single output path.
func checkDuplicateModes(modes []Mode) error {
	seen := make(map[string]bool, len(modes))
	for _, m := range modes {
		if seen[m.Name] {
			return fmt.Errorf("%w: %q listed more than once", ErrInvalidModeName, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// AIModes returns the subset of modes that require an AI backend, preserving
// order. Used by diagnostics to decide which credentials to check.
func AIModes(modes []Mode) []Mode {
	var out []Mode
	for _, m := range modes {
		if m.IsAI() {
			out = append(out, m)
		}
	}
	return out
}
