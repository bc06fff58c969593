package ingest

import (
	"testing"

	"github.com/JustynLim/SoC-SMS/core/sheet"
)

// marksheetEnv seeds courses and students so marksheet rows have enrollments
// to land on.
func marksheetEnv(t *testing.T) (*testEnv, string) {
	t.Helper()
	env := newTestEnv(t)
	dir := t.TempDir()
	importCourses(t, env, dir)

	path := writeWorkbook(t, dir, "datasheet.xlsx", []workSheet{{name: "Active", rows: activeDatasheetRows()}})
	if _, err := env.ingest.ImportDatasheet(path, "Active", dir); err != nil {
		t.Fatalf("ImportDatasheet() failed: %v", err)
	}
	return env, dir
}

func TestImportMarksheet(t *testing.T) {
	env, dir := marksheetEnv(t)

	// Bob (CU ID 1002) holds CSC1101 attempts [35, 55, -].
	path := writeWorkbook(t, dir, "marksheet.xlsx", []workSheet{
		{name: "CSC1101 - BCSCU", rows: [][]interface{}{
			{"No", "Name", "Programme", "Intake", "Group", "CU ID", "Reg No", "Session", "Grade", "Score", "Remark"},
			{1, "Bob Lee", "BCSCU", "2021", "A", 1002, "", "", "", 62, "Mark copied to datasheet"},
			{2, "No Copy", "BCSCU", "2021", "A", 1001, "", "", "", 90, "pending"},
			{3, "Bad ID", "BCSCU", "2021", "A", "x", "", "", "", 50, "mark copied"},
			{4, "Unknown", "BCSCU", "2021", "A", 9999, "", "", "", 70, "mark copied"},
		}},
		// "CSC" prefixes both CSC1101 and CSC2101: unresolvable, sheet skipped
		{name: "CSC - BCSCU", rows: [][]interface{}{
			{"No", "Name", "Programme", "Intake", "Group", "CU ID", "Reg No", "Session", "Grade", "Score", "Remark"},
			{1, "Bob Lee", "BCSCU", "2021", "A", 1002, "", "", "", 40, "mark copied"},
		}},
		// not a marksheet tab
		{name: "Summary", rows: [][]interface{}{{"totals"}}},
	})

	res, err := env.ingest.ImportMarksheet(path)
	if err != nil {
		t.Fatalf("ImportMarksheet() failed: %v", err)
	}
	if res.Sheets != 2 {
		t.Errorf("sheets = %d; want 2", res.Sheets)
	}
	if len(res.SkippedSheets) != 1 || res.SkippedSheets[0] != "CSC - BCSCU" {
		t.Errorf("skipped sheets = %v; want the unresolvable tab", res.SkippedSheets)
	}
	if res.Result.Updated != 1 {
		t.Errorf("updated = %d; want 1", res.Result.Updated)
	}
	// 3 disqualified rows + 1 row on the skipped sheet
	if res.Result.Skipped != 4 {
		t.Errorf("skipped = %d; want 4", res.Result.Skipped)
	}

	rec, err := env.scores.GetByKey("B1902", "CSC1101")
	if err != nil {
		t.Fatalf("GetByKey() failed: %v", err)
	}
	if got := rec.Attempts[2].Value.String(); got != "62" {
		t.Errorf("attempt 3 = %s; want the new mark 62", got)
	}
	if rec.Attempts[2].UpdatedAt == nil {
		t.Error("attempt 3 timestamp not advanced")
	}
	if got := rec.Attempts[0].Value.String(); got != "35" {
		t.Errorf("attempt 1 = %s; want untouched", got)
	}

	// re-importing the same sheet is a no-op
	res, err = env.ingest.ImportMarksheet(path)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if res.Result.Updated != 0 {
		t.Errorf("updated on re-import = %d; want 0", res.Result.Updated)
	}
}

func TestImportMarksheetFullRecord(t *testing.T) {
	env, dir := marksheetEnv(t)

	fill := func(code string, marks []interface{}) {
		sheetRows := [][]interface{}{
			{"No", "Name", "Programme", "Intake", "Group", "CU ID", "Reg No", "Session", "Grade", "Score", "Remark"},
		}
		for i, m := range marks {
			sheetRows = append(sheetRows,
				[]interface{}{i + 1, "Bob Lee", "BCSCU", "2021", "A", 1002, "", "", "", m, "mark copied"})
		}
		path := writeWorkbook(t, dir, "fill.xlsx", []workSheet{{name: code + " - BCSCU", rows: sheetRows}})
		if _, err := env.ingest.ImportMarksheet(path); err != nil {
			t.Fatalf("ImportMarksheet() failed: %v", err)
		}
	}

	// third distinct mark fills Bob's last CSC1101 slot
	fill("CSC1101", []interface{}{62})

	// a fourth mark has nowhere to go: non-MPU records reject it
	path := writeWorkbook(t, dir, "fourth.xlsx", []workSheet{
		{name: "CSC1101 - BCSCU", rows: [][]interface{}{
			{"No", "Name", "Programme", "Intake", "Group", "CU ID", "Reg No", "Session", "Grade", "Score", "Remark"},
			{1, "Bob Lee", "BCSCU", "2021", "A", 1002, "", "", "", 88, "mark copied"},
		}},
	})
	res, err := env.ingest.ImportMarksheet(path)
	if err != nil {
		t.Fatalf("ImportMarksheet() failed: %v", err)
	}
	if res.Result.Updated != 0 || res.Result.Skipped != 1 {
		t.Errorf("full record = %s; want the mark skipped", res.Result)
	}
	rec, _ := env.scores.GetByKey("B1902", "CSC1101")
	want := [3]string{"35", "55", "62"}
	for i := range want {
		if got := rec.Attempts[i].Value.String(); got != want[i] {
			t.Errorf("attempt %d = %s; want %s", i+1, got, want[i])
		}
	}

	// MPU records overwrite the older of slots 1-2 instead; Bob holds
	// MPU3123 [70, -, N/A]
	fill("MPU3123", []interface{}{65})
	rec, _ = env.scores.GetByKey("B1902", "MPU3123")
	if got := rec.Attempts[1].Value.String(); got != "65" {
		t.Errorf("MPU attempt 2 = %s; want 65", got)
	}

	fill("MPU3123", []interface{}{"R2024-1"})
	rec, _ = env.scores.GetByKey("B1902", "MPU3123")
	if got := rec.Attempts[0].Value.String(); got != "R2024-1" {
		t.Errorf("MPU attempt 1 = %s; want the older slot overwritten", got)
	}
	if rec.Attempts[2].Value.Kind != sheet.NotApplicable {
		t.Errorf("MPU attempt 3 = %s; want N/A untouched", rec.Attempts[2].Value)
	}
}
