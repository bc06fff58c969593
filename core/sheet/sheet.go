package sheet

import "strings"

// RawSheet is one worksheet as read from a workbook, all cells as text.
// Rows[0] is the primary header row; datasheet layouts carry a secondary
// header row at Rows[1] with the entity-block sub-labels, and data from
// Rows[2] onward.
type RawSheet struct {
	Name string
	Rows [][]string
}

// Header returns the primary header row, or nil for an empty sheet.
func (s RawSheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// Cell returns the trimmed cell at (row, col), or "" when out of range.
// Trailing empty cells are routinely absent from rows as decoded, so
// out-of-range reads are normal, not errors.
func (s RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	return cellAt(s.Rows[row], col)
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
