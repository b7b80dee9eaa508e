package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Selector resolution errors. Configuration-class: they fail the whole job
// before any task executes.
var (
	ErrUnknownExtractionType = errors.New("unknown extraction type")
	ErrMalformedSelector     = errors.New("malformed extraction selector")
)

// Resolve expands a list of extraction selectors into concrete catalog
// identifiers. A selector ending in "*" is expanded by prefix match within
// its namespace; any other selector must match exactly one catalog entry.
//
// Resolution is deterministic: the result follows catalog order, not
// selector order, and identifiers matched by more than one selector appear
// once (set union).
func (c *Catalog) Resolve(selectors []string) ([]string, error) {
	if len(selectors) == 0 {
		return nil, fmt.Errorf("%w: empty selector list", ErrMalformedSelector)
	}

	var prefixes []string
	exact := make(map[string]bool)

	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			return nil, fmt.Errorf("%w: empty selector", ErrMalformedSelector)
		}
		if i := strings.Index(sel, "*"); i >= 0 && i != len(sel)-1 {
			return nil, fmt.Errorf("%w: %q (wildcard allowed only as suffix)", ErrMalformedSelector, sel)
		}

		if strings.HasSuffix(sel, "*") {
			prefix := strings.TrimSuffix(sel, "*")
			if prefix == "" {
				return nil, fmt.Errorf("%w: bare %q has no namespace", ErrMalformedSelector, sel)
			}
			ns := c.namespaceForSelector(prefix)
			if ns == nil {
				return nil, fmt.Errorf("%w: %q matches no namespace", ErrUnknownExtractionType, sel)
			}
			matched := false
			for _, id := range ns.Extractions {
				if strings.HasPrefix(id, prefix) {
					matched = true
				}
			}
			if !matched {
				return nil, fmt.Errorf("%w: %q matches nothing in namespace %q", ErrUnknownExtractionType, sel, ns.Name)
			}
			prefixes = append(prefixes, prefix)
			continue
		}

		if !c.Contains(sel) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtractionType, sel)
		}
		exact[sel] = true
	}

	// Walk the catalog in order so the union is deterministic.
	var out []string
	for _, ns := range c.Namespaces {
		for _, id := range ns.Extractions {
			if exact[id] || matchesAny(id, prefixes) {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// namespaceForSelector finds the namespace a wildcard prefix belongs to: the
// one whose "<name>_" prefix and the selector prefix agree on their common
// length. "pattern_url*" and the bare "pattern*" both land in pattern.
func (c *Catalog) namespaceForSelector(prefix string) *Namespace {
	for i := range c.Namespaces {
		nsPrefix := c.Namespaces[i].Name + "_"
		if strings.HasPrefix(prefix, nsPrefix) || strings.HasPrefix(nsPrefix, prefix) {
			return &c.Namespaces[i]
		}
	}
	return nil
}

func matchesAny(id string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
