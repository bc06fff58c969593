package sheet

import (
	"errors"
	"testing"
)

func courseSheetHeader() []string {
	return []string{
		"Course Code", "Module", "Classification", "Pre/Co Req", "Credit Hour",
		"Lect hr/wk", "Tut hr/wk", "Lab hr/wk", "BL hr/wk", "Remarks",
		"CU-CW Credits", "CU-EX Credits", "Level", "Lecturer",
	}
}

func courseRow(cells ...string) []string { return cells }

func TestParseCourseSheet(t *testing.T) {
	s := RawSheet{
		Name: "Course Structure",
		Rows: [][]string{
			courseSheetHeader(),
			courseRow("orphan", "Row", "Above Sections"), // dropped: no section yet
			courseRow("Year 1"),
			courseRow("CS1101", "Programming I", "Core", "-", "4", "3", "1", "2", "0", "x", "0.5", "0.5", "1", "Dr. Wong"),
			courseRow("CS1102", "", "Core"), // module missing
			courseRow("Compulsory"),
			courseRow("MPU3113", "Ethnic Relations", "MPU Compulsory", "-", "3", "3", "0", "0", "0", "", "100", "0", "2", "Dr. Siti"),
			courseRow("OLD1101", "Retired Module", "Core (inactive)", "-", "4", "3", "1", "0", "0", "", "60", "40", "1", ""),
			courseRow("NOC1101", "No Credits", "Core", "-", "", "3", "1", "0", "0", "", "60", "40", "1", ""),
		},
	}

	rows, warnings, err := ParseCourseSheet(s, false)
	if err != nil {
		t.Fatalf("ParseCourseSheet() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v; want none", warnings)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows; want 4", len(rows))
	}

	cs := rows[0]
	if cs.Code != "CS1101" || cs.Year != "Year 1" || cs.Status != CourseActive {
		t.Errorf("CS1101 = %+v", cs)
	}
	if cs.CWCredits != 50 || cs.EXCredits != 50 {
		t.Errorf("CS1101 credits = %d/%d; want fractions rescaled to 50/50", cs.CWCredits, cs.EXCredits)
	}
	if cs.Priority != 1 {
		t.Errorf("CS1101 priority = %d; want level 1", cs.Priority)
	}

	mpu := rows[1]
	if mpu.Year != "Compulsory" || mpu.Priority != 0 {
		t.Errorf("MPU3113 = %+v; want compulsory priority 0", mpu)
	}
	if mpu.CWCredits != 100 {
		t.Errorf("MPU3113 CW credits = %d; want 100 passed through", mpu.CWCredits)
	}

	if old := rows[2]; old.Status != CourseInactive {
		t.Errorf("OLD1101 status = %q; want inactive classification honored", old.Status)
	}
	if noc := rows[3]; noc.Status != CourseInactive {
		t.Errorf("NOC1101 status = %q; want inactive for missing credit hours", noc.Status)
	}
}

func TestParseCourseSheetLegacyForcesInactive(t *testing.T) {
	s := RawSheet{
		Name: "Course Structure",
		Rows: [][]string{
			courseSheetHeader(),
			courseRow("Year 2"),
			courseRow("CS2201", "Data Structures", "Core", "-", "4", "3", "1", "2", "0", "", "50", "50", "2", ""),
		},
	}
	rows, _, err := ParseCourseSheet(s, true)
	if err != nil {
		t.Fatalf("ParseCourseSheet() error: %v", err)
	}
	if rows[0].Status != CourseInactive {
		t.Errorf("status = %q; want legacy imports forced inactive", rows[0].Status)
	}
}

func TestParseCourseSheetNarrowHeader(t *testing.T) {
	s := RawSheet{Name: "Course Structure", Rows: [][]string{{"Course Code", "Module"}}}
	_, _, err := ParseCourseSheet(s, false)

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v; want MissingColumnsError", err)
	}
}

func TestRescaleFraction(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0.5", "50"},
		{"1", "100"},
		{"0", "0"},
		{"0.25", "25"},
		{"60", "60"},   // already a percentage
		{"-0.5", "-0.5"},
		{"n/a", "n/a"}, // non-numeric passes through
	}
	for _, tt := range tests {
		if got := RescaleFraction(tt.in); got != tt.want {
			t.Errorf("RescaleFraction(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
