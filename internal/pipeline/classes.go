package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ClassTable is the ordered, read-only list of class names. The position of a
// name is its class index. The zero value is an empty table.
type ClassTable struct {
	names []string
}

// NewClassTable copies names into a new table. Empty tables, blank or
// duplicate names, and names colliding with LowConfidenceLabel are rejected
// because each would make a response ambiguous.
func NewClassTable(names []string) (ClassTable, error) {
	if len(names) == 0 {
		return ClassTable{}, errors.New("class table is empty")
	}
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return ClassTable{}, fmt.Errorf("class %d has an empty name", i)
		}
		if n == LowConfidenceLabel {
			return ClassTable{}, fmt.Errorf("class %d uses the reserved name %q", i, n)
		}
		if j, dup := seen[n]; dup {
			return ClassTable{}, fmt.Errorf("class name %q repeated at index %d and %d", n, j, i)
		}
		seen[n] = i
		out[i] = n
	}
	return ClassTable{names: out}, nil
}

// Len returns the number of classes.
func (t ClassTable) Len() int { return len(t.names) }

// Name returns the class name at index i.
func (t ClassTable) Name(i int) string { return t.names[i] }

// Names returns a copy of the class names in index order.
func (t ClassTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Contains reports whether name is a known class.
func (t ClassTable) Contains(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}
