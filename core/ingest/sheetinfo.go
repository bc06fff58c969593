package ingest

import (
	"github.com/JustynLim/SoC-SMS/core/sheet"
	"github.com/JustynLim/SoC-SMS/core/student"
)

// CourseStructureSheet is the workbook sheet name carrying the course
// structure for a program.
const CourseStructureSheet = "Course-Str"

// DatasheetSpecs maps the known datasheet names to their layout. Each
// datasheet keeps student demographics in columns C..M (matric number in M)
// and per-course attempt columns from N up to the "P-Yr2" sentinel.
var DatasheetSpecs = map[string]sheet.Spec{
	"Active": {
		Sheet:           "Active",
		RequiredColumns: []string{"F", "G", "M"},
		EntityStart:     "C",
		EntityEnd:       "M",
		RepeatingStart:  "N",
		SentinelLabel:   "P-Yr2",
		GradLabel:       "Grad",
		DateFields:      []string{"Cohort"},
	},
	"Graduate": {
		Sheet:           "Graduate",
		RequiredColumns: []string{"F", "G", "M"},
		EntityStart:     "C",
		EntityEnd:       "M",
		RepeatingStart:  "N",
		SentinelLabel:   "P-Yr2",
		GradLabel:       "Grad",
		DateFields:      []string{"Cohort"},
	},
	"Withdraw": {
		Sheet:           "Withdraw",
		RequiredColumns: []string{"G", "M"},
		EntityStart:     "C",
		EntityEnd:       "M",
		RepeatingStart:  "N",
		SentinelLabel:   "P-Yr2",
		GradLabel:       "Grad",
		DateFields:      []string{"Cohort"},
	},
}

// datasheetStatus maps a datasheet name to the student status its rows carry.
var datasheetStatus = map[string]string{
	"Active":   student.StatusActive,
	"Graduate": student.StatusGraduate,
	"Withdraw": student.StatusWithdraw,
}
