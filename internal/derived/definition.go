package derived

import (
	"fmt"
	"strings"
)

// Definition is a named derived-metric expression.
type Definition struct {
	Name       string
	Expression string
}

// ParseDefinition parses a single NAME=EXPR string.
func ParseDefinition(s string) (Definition, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return Definition{}, fmt.Errorf("invalid metric format %q: expected NAME=EXPR", s)
	}

	name := strings.TrimSpace(parts[0])
	expression := strings.TrimSpace(parts[1])

	if name == "" {
		return Definition{}, fmt.Errorf("invalid metric format %q: name cannot be empty", s)
	}
	if expression == "" {
		return Definition{}, fmt.Errorf("invalid metric format %q: expression cannot be empty", s)
	}

	return Definition{Name: name, Expression: expression}, nil
}

// ParseDefinitions parses a semicolon-separated list of NAME=EXPR entries.
// Empty sections are ignored.
func ParseDefinitions(s string) ([]Definition, error) {
	var defs []Definition
	for _, section := range strings.Split(s, ";") {
		if strings.TrimSpace(section) == "" {
			continue
		}
		def, err := ParseDefinition(section)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
