package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// bundleSchema is a minimal structural check for STIX 2.1 bundles: the right
// type, a bundle-prefixed id, and an objects array. Content validation is the
// engine's job; this only catches truncated or non-bundle output.
const bundleSchema = `{
	"type": "object",
	"required": ["type", "id", "objects"],
	"properties": {
		"type": {"const": "bundle"},
		"id": {"type": "string", "pattern": "^bundle--[0-9a-f-]{36}$"},
		"objects": {"type": "array"}
	}
}`

var compiledBundleSchema = mustCompileBundleSchema()

func mustCompileBundleSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("bundle.json", strings.NewReader(bundleSchema)); err != nil {
		panic(fmt.Sprintf("bundle schema: %v", err))
	}
	return compiler.MustCompile("bundle.json")
}

// ValidateBundle checks raw bundle JSON against the structural schema and
// returns the number of objects it contains. An empty objects array is a
// valid, successful result.
func ValidateBundle(raw []byte) (int, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if err := compiledBundleSchema.Validate(v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	var counted struct {
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(raw, &counted); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return len(counted.Objects), nil
}
