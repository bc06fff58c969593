package sheet

import (
	"fmt"
	"strings"
)

// Spec describes how one known sheet layout is carved up: which columns must
// be present, where the entity (demographic) block sits, where the repeating
// per-course block starts and the header label that ends it. Column
// references are letter codes resolved once against the actual header.
type Spec struct {
	Sheet           string
	RequiredColumns []string
	EntityStart     string
	EntityEnd       string
	RepeatingStart  string
	SentinelLabel   string

	// GradLabel names the graduation-date column merged into the entity
	// block ("-" when absent or blank). Empty disables the merge.
	GradLabel string
	// DateFields lists entity headers normalized to DD/MM/YYYY.
	DateFields []string

	// Legacy marks an import of a retired course set.
	Legacy bool
}

// Layout is a Spec resolved against a concrete header row.
type Layout struct {
	Required       []int
	EntityStart    int
	EntityEnd      int
	RepeatingStart int
	Sentinel       int // -1 when the sentinel label is absent
}

// MissingColumnsError aborts a sheet whose required columns are absent.
// No partial output is produced.
type MissingColumnsError struct {
	Sheet   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(e.Columns, ", "))
}

// Resolve validates the spec against a header row and returns the positional
// layout. All required letters must fall within the header width.
func (sp Spec) Resolve(header []string) (Layout, error) {
	var missing []string
	required := make([]int, 0, len(sp.RequiredColumns))
	for _, letter := range sp.RequiredColumns {
		idx := ColumnIndex(letter)
		if idx < 0 || idx >= len(header) {
			missing = append(missing, letter)
			continue
		}
		required = append(required, idx)
	}
	if len(missing) > 0 {
		return Layout{}, &MissingColumnsError{Sheet: sp.Sheet, Columns: missing}
	}

	lay := Layout{
		Required:       required,
		EntityStart:    ColumnIndex(sp.EntityStart),
		EntityEnd:      ColumnIndex(sp.EntityEnd),
		RepeatingStart: ColumnIndex(sp.RepeatingStart),
		Sentinel:       -1,
	}
	if sp.SentinelLabel != "" {
		lay.Sentinel = FindSentinel(header, sp.SentinelLabel, lay.RepeatingStart)
	}
	return lay, nil
}
