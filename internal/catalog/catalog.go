// Package catalog holds the fixed catalog of known extraction-type
// identifiers, partitioned into three namespaces (pattern, lookup, ai), and
// resolves operator-supplied selectors against it. The catalog is embedded
// at build time and loaded once at process start; it is read-only afterward.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Namespace is one ordered identifier list within the catalog.
type Namespace struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Extractions []string `yaml:"extractions"`
}

// Catalog is the immutable set of known extraction identifiers.
type Catalog struct {
	Namespaces []Namespace `yaml:"namespaces"`
}

// Default is the embedded catalog, loaded once at init.
var Default = mustLoad()

func mustLoad() *Catalog {
	c, err := Load(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load parses and validates catalog YAML: every identifier must carry its
// namespace's name as a prefix and appear only once across the catalog.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(c.Namespaces) == 0 {
		return nil, fmt.Errorf("catalog has no namespaces")
	}

	seen := make(map[string]bool)
	for _, ns := range c.Namespaces {
		if ns.Name == "" {
			return nil, fmt.Errorf("namespace with empty name")
		}
		for _, id := range ns.Extractions {
			if !strings.HasPrefix(id, ns.Name+"_") {
				return nil, fmt.Errorf("identifier %q not in namespace %q", id, ns.Name)
			}
			if seen[id] {
				return nil, fmt.Errorf("duplicate identifier %q", id)
			}
			seen[id] = true
		}
	}
	return &c, nil
}

// NamespaceNames returns the namespace names in catalog order.
func (c *Catalog) NamespaceNames() []string {
	names := make([]string, len(c.Namespaces))
	for i, ns := range c.Namespaces {
		names[i] = ns.Name
	}
	return names
}

// Namespace returns the namespace with the given name, or nil.
func (c *Catalog) Namespace(name string) *Namespace {
	for i := range c.Namespaces {
		if c.Namespaces[i].Name == name {
			return &c.Namespaces[i]
		}
	}
	return nil
}

// Contains reports whether id is a known extraction identifier.
func (c *Catalog) Contains(id string) bool {
	for _, ns := range c.Namespaces {
		for _, known := range ns.Extractions {
			if known == id {
				return true
			}
		}
	}
	return false
}

// All returns every identifier in catalog order.
func (c *Catalog) All() []string {
	var out []string
	for _, ns := range c.Namespaces {
		out = append(out, ns.Extractions...)
	}
	return out
}
