package sheet

import "testing"

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AZ", 51},
		{"BA", 52},
		{"ZZ", 701},
		{" m ", 12}, // trimmed, case-insensitive
		{"", -1},
		{"A1", -1},
	}
	for _, tt := range tests {
		if got := ColumnIndex(tt.letter); got != tt.want {
			t.Errorf("ColumnIndex(%q) = %d; want %d", tt.letter, got, tt.want)
		}
	}
}

func TestColumnLetterRoundTrip(t *testing.T) {
	// every letter code A..ZZ must survive the round trip
	for idx := 0; idx <= ColumnIndex("ZZ"); idx++ {
		letter := ColumnLetter(idx)
		if got := ColumnIndex(letter); got != idx {
			t.Fatalf("ColumnIndex(ColumnLetter(%d)) = %d", idx, got)
		}
	}
	if got := ColumnLetter(-1); got != "" {
		t.Errorf("ColumnLetter(-1) = %q; want empty", got)
	}
}

func TestFindSentinel(t *testing.T) {
	header := []string{"Name", "CS101", "", " P-Yr2 ", "CS102", "P-Yr2"}

	tests := []struct {
		name  string
		label string
		from  int
		want  int
	}{
		{"first hit from start", "P-Yr2", 0, 3},
		{"trimmed match", "P-Yr2", 1, 3},
		{"search resumes past earlier hits", "P-Yr2", 4, 5},
		{"absent label", "P-Yr3", 0, -1},
		{"negative start clamped", "Name", -3, 0},
		{"case sensitive", "p-yr2", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindSentinel(header, tt.label, tt.from); got != tt.want {
				t.Errorf("FindSentinel(%q, %d) = %d; want %d", tt.label, tt.from, got, tt.want)
			}
		})
	}
}
