package sheet

import "strings"

// ColumnIndex converts a column letter code (A, B, ..., Z, AA, ...) to its
// zero-based position. Letters are base-26 digits with A=1. Returns -1 for an
// empty or non-alphabetic code.
func ColumnIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return -1
	}
	n := 0
	for _, r := range letter {
		if r < 'A' || r > 'Z' {
			return -1
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}

// ColumnLetter converts a zero-based position back to its letter code.
func ColumnLetter(idx int) string {
	if idx < 0 {
		return ""
	}
	var buf []byte
	n := idx + 1
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

// FindSentinel scans header left-to-right from position `from` for the first
// cell whose trimmed text equals label (case-sensitive). Returns -1 when the
// label is absent; callers then run to the end of the sheet.
func FindSentinel(header []string, label string, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(header); i++ {
		if strings.TrimSpace(header[i]) == label {
			return i
		}
	}
	return -1
}
