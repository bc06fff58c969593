package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

// courseSheetRegex recognizes per-course marksheet tabs named
// "<CODE> - BCSCU". The captured code is often a short or legacy form that
// must be resolved against the canonical course table.
var courseSheetRegex = regexp.MustCompile(`(?i)^([A-Za-z0-9][A-Za-z0-9_-]{2,})\s*-\s*BCSCU$`)

// marksheet column positions (0-based): F carries the CU ID, J the score and
// K the lecturer's remark.
const (
	msCUID   = 5
	msScore  = 9
	msRemark = 10
)

// MarksheetResult summarizes one marksheet workbook import.
type MarksheetResult struct {
	Sheets        int               `json:"sheets"`
	Result        core.ImportResult `json:"result"`
	SkippedSheets []string          `json:"skipped_sheets,omitempty"`
}

// ImportMarksheet scans a workbook for per-course marksheet tabs and applies
// their scores to enrolled students' attempt slots.
//
// A row qualifies only when its CU ID parses as an integer and the remark
// contains "mark copied"; everything else on these free-form sheets is
// narrative. Sheets whose course code cannot be uniquely resolved are skipped
// whole, with their rows counted, so tallies stay honest.
func (svc *Service) ImportMarksheet(path string) (*MarksheetResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening workbook %s", path)
	}
	defer f.Close()

	res := &MarksheetResult{}
	for _, name := range f.GetSheetList() {
		m := courseSheetRegex.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		res.Sheets++

		rows, err := f.GetRows(name)
		if err != nil {
			return res, errors.Wrapf(err, "reading sheet %q", name)
		}
		if len(rows) > 0 {
			rows = rows[1:] // header
		}

		code, err := svc.courses.Resolve(strings.ToUpper(strings.TrimSpace(m[1])))
		if err != nil {
			if errors.Is(err, course.ErrUnresolvedCode) {
				svc.log.Warn(fmt.Sprintf("sheet %s: cannot resolve course code %q, skipping sheet", name, m[1]))
				res.Result.Skipped += len(rows)
				res.SkippedSheets = append(res.SkippedSheets, name)
				continue
			}
			return res, err
		}

		marks, skipped := svc.collectMarks(rows, code)
		res.Result.Skipped += skipped

		sheetRes, err := svc.scores.ImportMarks(marks)
		res.Result.Add(sheetRes)
		if err != nil {
			return res, err
		}
		svc.log.Info(fmt.Sprintf("sheet %s: %s", name, sheetRes))
	}
	return res, nil
}

// collectMarks filters a sheet's rows down to applicable marks, mapping each
// CU ID to its matric number.
func (svc *Service) collectMarks(rows [][]string, code string) (marks []score.Mark, skipped int) {
	for _, row := range rows {
		cuID, err := strconv.Atoi(strings.TrimSpace(cellAt(row, msCUID)))
		if err != nil {
			skipped++
			continue
		}
		if !strings.Contains(strings.ToLower(cellAt(row, msRemark)), "mark copied") {
			skipped++
			continue
		}

		matric, err := svc.students.MatricByCUID(cuID)
		if err != nil {
			skipped++
			continue
		}
		marks = append(marks, score.Mark{
			MatricNo:   matric,
			CourseCode: code,
			Value:      sheet.ParseValue(cellAt(row, msScore)),
		})
	}
	return marks, skipped
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
