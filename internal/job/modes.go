package job

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidModeName marks an unknown processing mode. Configuration-class:
// a single bad mode fails the whole run before any task starts.
var ErrInvalidModeName = errors.New("invalid processing mode")

// RelationshipMode selects how the engine derives relationships between
// extracted objects.
type RelationshipMode string

const (
	RelationshipStandard RelationshipMode = "standard"
	RelationshipAI       RelationshipMode = "ai"
)

// Mode is one named engine configuration. AI-backed modes carry the
// provider-qualified model identifier passed to the engine and the
// environment variable holding that provider's credential.
type Mode struct {
	Name             string
	RelationshipMode RelationshipMode
	AIModel          string
	EnvKey           string
}

// IsAI reports whether the mode requires an AI backend.
func (m Mode) IsAI() bool { return m.RelationshipMode == RelationshipAI }

// Provider returns the backend provider name ("openai", "anthropic", ...),
// or "" for non-AI modes.
func (m Mode) Provider() string {
	p, _, ok := strings.Cut(m.AIModel, ":")
	if !ok {
		return ""
	}
	return p
}

// presetModes is the fixed registry of supported modes.
var presetModes = map[string]Mode{
	"standard": {
		Name:             "standard",
		RelationshipMode: RelationshipStandard,
	},
	"gpt4o": {
		Name:             "gpt4o",
		RelationshipMode: RelationshipAI,
		AIModel:          "openai:gpt-4o",
		EnvKey:           "OPENAI_API_KEY",
	},
	"gpt4o-mini": {
		Name:             "gpt4o-mini",
		RelationshipMode: RelationshipAI,
		AIModel:          "openai:gpt-4o-mini",
		EnvKey:           "OPENAI_API_KEY",
	},
	"claude": {
		Name:             "claude",
		RelationshipMode: RelationshipAI,
		AIModel:          "anthropic:claude-3-5-sonnet-latest",
		EnvKey:           "ANTHROPIC_API_KEY",
	},
	"gemini": {
		Name:             "gemini",
		RelationshipMode: RelationshipAI,
		AIModel:          "gemini:models/gemini-1.5-pro-latest",
		EnvKey:           "GOOGLE_API_KEY",
	},
	"deepseek": {
		Name:             "deepseek",
		RelationshipMode: RelationshipAI,
		AIModel:          "deepseek:deepseek-chat",
		EnvKey:           "DEEPSEEK_API_KEY",
	},
}

// LookupMode resolves a mode name (case-insensitive, trimmed).
func LookupMode(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	m, ok := presetModes[key]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q (known: %s)", ErrInvalidModeName, name, strings.Join(ModeNames(), ", "))
	}
	return m, nil
}

// LookupModes resolves every name or fails on the first unknown one.
func LookupModes(names []string) ([]Mode, error) {
	modes := make([]Mode, 0, len(names))
	for _, n := range names {
		m, err := LookupMode(n)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// ModeNames returns the registry's mode names sorted alphabetically.
func ModeNames() []string {
	names := make([]string, 0, len(presetModes))
	for n := range presetModes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
