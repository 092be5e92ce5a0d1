package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column is the shape a catalog column must have.
type Column struct {
	Type     string
	Nullable bool
}

// Schema maps column names to their shape.
type Schema map[string]Column

// SchemaError lists how a table differs from the schema it should have.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the catalog schema", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, ", "))
	}
	return b.String()
}

// CompareSchema checks actual against expected. Extra columns are allowed.
// An empty actual schema means the table does not exist. Type names are
// compared case-insensitively.
func CompareSchema(table string, expected, actual Schema) error {
	if len(actual) == 0 {
		return fmt.Errorf("table %s does not exist", table)
	}

	e := &SchemaError{Table: table}

	for _, name := range slices.Sorted(maps.Keys(expected)) {
		want := expected[name]
		got, ok := actual[name]
		if !ok {
			e.Missing = append(e.Missing, name)
			continue
		}
		if !strings.EqualFold(got.Type, want.Type) {
			e.Mismatched = append(e.Mismatched, fmt.Sprintf("%s (want %s, got %s)", name, want.Type, got.Type))
		}
		if got.Nullable != want.Nullable {
			e.Mismatched = append(e.Mismatched, fmt.Sprintf("%s (want nullable=%t)", name, want.Nullable))
		}
	}

	if len(e.Missing) > 0 || len(e.Mismatched) > 0 {
		return e
	}
	return nil
}
