package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Course status values derived while classifying course-structure rows.
const (
	CourseActive   = "Active"
	CourseInactive = "Inactive"

	SectionCompulsory = "Compulsory"
)

var (
	sectionRegex = regexp.MustCompile(`(?i)^(year\s*\d+|compulsory)`)
	digitsRegex  = regexp.MustCompile(`\d+`)
)

// CourseRow is one classified row of a course-structure sheet.
type CourseRow struct {
	Code           string
	Module         string
	Classification string
	PreCoReq       string
	CreditHour     int
	LectHrWk       string
	TutHrWk        string
	LabHrWk        string
	BLHrWk         string
	CWCredits      int
	EXCredits      int
	Level          int
	Lecturer       string

	// Year is the section label inherited from the nearest preceding
	// section-header row ("Year N" or "Compulsory").
	Year     string
	Status   string
	Priority int // 0 = compulsory across all years, else the raw level
}

// course-structure column positions (letters A..N, J unused)
const (
	csCode = iota
	csModule
	csClassification
	csPreCoReq
	csCreditHour
	csLectHrWk
	csTutHrWk
	csLabHrWk
	csBLHrWk
	_ // J: internal remarks, dropped
	csCWCredits
	csEXCredits
	csLevel
	csLecturer
	csWidth
)

// ParseCourseSheet classifies a course-structure sheet into typed rows.
//
// Rows whose first cell matches a "Year N" / "Compulsory" marker update the
// current section and emit nothing; data rows above any marker are dropped.
// A data row needs code, module and classification all non-empty. The CW/EX
// credit columns arrive as raw fractions in some exports and are rescaled
// x100 when numeric and within [0,1]. Legacy imports force every row
// Inactive.
func ParseCourseSheet(s RawSheet, legacy bool) ([]CourseRow, []string, error) {
	header := s.Header()
	if len(header) < csWidth {
		var missing []string
		for i := len(header); i < csWidth; i++ {
			missing = append(missing, ColumnLetter(i))
		}
		return nil, nil, &MissingColumnsError{Sheet: s.Name, Columns: missing}
	}

	var (
		rows     []CourseRow
		warnings []string
		section  string
	)
	for ri := 1; ri < len(s.Rows); ri++ {
		row := s.Rows[ri]
		first := cellAt(row, csCode)

		if m := sectionRegex.FindString(first); m != "" {
			section = normalizeSection(m)
			continue
		}
		if section == "" {
			continue
		}

		code := first
		module := cellAt(row, csModule)
		class := cellAt(row, csClassification)
		if code == "" || module == "" || class == "" {
			continue
		}

		cr := CourseRow{
			Code:           code,
			Module:         module,
			Classification: class,
			PreCoReq:       cellAt(row, csPreCoReq),
			LectHrWk:       cellAt(row, csLectHrWk),
			TutHrWk:        cellAt(row, csTutHrWk),
			LabHrWk:        cellAt(row, csLabHrWk),
			BLHrWk:         cellAt(row, csBLHrWk),
			Lecturer:       cellAt(row, csLecturer),
			Year:           section,
		}
		cr.CreditHour = parseIntCell(row, csCreditHour, ri, "credit hour", &warnings)
		cr.CWCredits = parseIntValue(RescaleFraction(cellAt(row, csCWCredits)), ri, "CW credits", &warnings)
		cr.EXCredits = parseIntValue(RescaleFraction(cellAt(row, csEXCredits)), ri, "EX credits", &warnings)
		cr.Level = parseIntCell(row, csLevel, ri, "level", &warnings)

		switch {
		case legacy:
			cr.Status = CourseInactive
		case strings.Contains(strings.ToLower(class), "inactive"):
			cr.Status = CourseInactive
		case cr.CreditHour == 0:
			cr.Status = CourseInactive
		default:
			cr.Status = CourseActive
		}

		if section != SectionCompulsory {
			cr.Priority = cr.Level
		}
		rows = append(rows, cr)
	}
	return rows, warnings, nil
}

// RescaleFraction converts a raw fraction (0..1) to a percentage. Non-numeric
// or out-of-range values pass through unchanged.
func RescaleFraction(v string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || f > 1 {
		return v
	}
	return strconv.FormatFloat(f*100, 'f', -1, 64)
}

func normalizeSection(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if strings.EqualFold(s, SectionCompulsory) {
		return SectionCompulsory
	}
	return "Year " + digitsRegex.FindString(s)
}

func parseIntCell(row []string, col, rowIdx int, field string, warnings *[]string) int {
	return parseIntValue(cellAt(row, col), rowIdx, field, warnings)
}

func parseIntValue(v string, rowIdx int, field string, warnings *[]string) int {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("row %d: non-numeric %s %q treated as 0", rowIdx+1, field, v))
		return 0
	}
	return int(f)
}
