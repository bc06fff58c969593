package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/sheet"
	"github.com/JustynLim/SoC-SMS/core/student"
)

var (
	ErrUnknownSheet = errors.New("unknown datasheet name")
)

type (
	// Service orchestrates workbook ingestion: datasheets (demographics +
	// attempt columns), course-structure sheets and free-form marksheets.
	Service struct {
		students *student.Service
		courses  *course.Service
		scores   *score.Service
		conf     *core.Config
		log      core.Logger
	}

	// DatasheetResult summarizes one datasheet import.
	DatasheetResult struct {
		Files    []string          `json:"files"`
		Students core.ImportResult `json:"students"`
		Scores   core.ImportResult `json:"scores"`
		Warnings []string          `json:"warnings,omitempty"`

		// MissingReport is the path of the remediation report written when
		// the score import aborted on matric numbers absent from the
		// students table.
		MissingReport string `json:"missing_report,omitempty"`
	}

	// CourseResult summarizes one course-structure import.
	CourseResult struct {
		File     string            `json:"file"`
		Courses  core.ImportResult `json:"courses"`
		Warnings []string          `json:"warnings,omitempty"`
	}
)

func NewService(students *student.Service, courses *course.Service, scores *score.Service, conf *core.Config, log core.Logger) *Service {
	return &Service{
		students: students,
		courses:  courses,
		scores:   scores,
		conf:     conf,
		log:      log,
	}
}

// readSheet loads one named sheet of a workbook into a RawSheet.
func readSheet(path, name string) (sheet.RawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return sheet.RawSheet{}, errors.Wrapf(err, "opening workbook %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		return sheet.RawSheet{}, errors.Wrapf(err, "reading sheet %q", name)
	}
	return sheet.RawSheet{Name: name, Rows: rows}, nil
}

// ImportDatasheet runs one datasheet (Active/Graduate/Withdraw) through the
// full pipeline: segmentation, student upserts, attempt grouping, Year-1
// exemption collapse and score reconciliation. Normalized CSV artifacts are
// written next to the upload for auditability.
func (svc *Service) ImportDatasheet(path, sheetName, outDir string) (*DatasheetResult, error) {
	sp, ok := DatasheetSpecs[sheetName]
	if !ok {
		return nil, errors.Wrap(ErrUnknownSheet, sheetName)
	}

	raw, err := readSheet(path, sp.Sheet)
	if err != nil {
		return nil, err
	}
	seg, err := sheet.Segment(raw, sp)
	if err != nil {
		return nil, err
	}

	res := &DatasheetResult{Warnings: seg.Warnings}

	// Students first so scores can safely reference their matric numbers.
	records, warnings := student.FromEntityBlock(seg.Entity, datasheetStatus[sheetName])
	res.Warnings = append(res.Warnings, warnings...)

	studentFile, err := svc.writeCSV(outDir, sheetName+"_Student.csv", seg.Entity.Header, seg.Entity.Rows)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, studentFile)

	if res.Students, err = svc.students.ImportRecords(records); err != nil {
		return res, err
	}
	svc.log.Info(fmt.Sprintf("sheet %s: students %s", sheetName, res.Students))

	// Attempt grouping and score reconciliation.
	grouped := sheet.GroupAttempts(seg.Repeating.Header, seg.Keys, seg.Repeating.Rows)
	year1, err := svc.courses.Year1Codes()
	if err != nil {
		return res, err
	}
	grouped.CollapseYear1Exemptions(year1)

	scoreHeader := append([]string{"Matric_No"}, grouped.Columns...)
	scoreRows := make([][]string, 0, len(grouped.Rows))
	for _, kr := range grouped.Rows {
		scoreRows = append(scoreRows, append([]string{kr.Key}, kr.Values...))
	}
	scoreFile, err := svc.writeCSV(outDir, sheetName+"_Student_Score.csv", scoreHeader, scoreRows)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, scoreFile)

	res.Scores, err = svc.scores.ImportGrouped(grouped)
	if err != nil {
		var missing *score.MissingKeysError
		if errors.As(err, &missing) {
			report, rerr := svc.writeMissingReport(outDir, missing.Keys)
			if rerr != nil {
				return res, rerr
			}
			res.MissingReport = report
			svc.log.Warn(fmt.Sprintf("sheet %s: score import aborted, %d missing matrics reported to %s",
				sheetName, len(missing.Keys), report))
			return res, nil
		}
		return res, err
	}
	svc.log.Info(fmt.Sprintf("sheet %s: scores %s", sheetName, res.Scores))
	return res, nil
}

// ImportCourseStructure imports the course-structure sheet of a workbook for
// one program and version. The version string must parse; it determines which
// course set enrollment seeding draws from.
func (svc *Service) ImportCourseStructure(path, program, rawVersion, outDir string, legacy bool) (*CourseResult, error) {
	version, err := course.ParseVersion(rawVersion)
	if err != nil {
		return nil, err
	}

	raw, err := readSheet(path, CourseStructureSheet)
	if err != nil {
		return nil, err
	}
	rows, warnings, err := sheet.ParseCourseSheet(raw, legacy)
	if err != nil {
		return nil, err
	}

	res := &CourseResult{Warnings: warnings}
	if res.File, err = svc.writeCSV(outDir, "Course_Structure.csv", courseCSVHeader, courseCSVRows(rows)); err != nil {
		return nil, err
	}
	if res.Courses, err = svc.courses.ImportRows(rows, program, version); err != nil {
		return res, err
	}
	svc.log.Info(fmt.Sprintf("course structure %s %s: %s", program, rawVersion, res.Courses))
	return res, nil
}

var courseCSVHeader = []string{
	"Course Code", "Module", "Classification", "Pre/Co-Req", "Credit Hour",
	"Lect Hr/Wk", "Tut Hr/Wk", "Lab Hr/Wk", "BL Hr/Wk", "CW %", "EX %",
	"Level", "Lecturer", "Year", "Course Status", "Course Priority",
}

func courseCSVRows(rows []sheet.CourseRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Code, r.Module, r.Classification, r.PreCoReq, fmt.Sprint(r.CreditHour),
			r.LectHrWk, r.TutHrWk, r.LabHrWk, r.BLHrWk, fmt.Sprint(r.CWCredits), fmt.Sprint(r.EXCredits),
			fmt.Sprint(r.Level), r.Lecturer, r.Year, r.Status, fmt.Sprint(r.Priority),
		})
	}
	return out
}

func (svc *Service) writeCSV(dir, name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating output folder")
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", name)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(header); err != nil {
		return "", errors.Wrapf(err, "writing %s", name)
	}
	if err = w.WriteAll(rows); err != nil {
		return "", errors.Wrapf(err, "writing %s", name)
	}
	return path, nil
}

// writeMissingReport lists matric numbers that must be added to the students
// table before the aborted score import can be retried.
func (svc *Service) writeMissingReport(dir string, keys []string) (string, error) {
	name := fmt.Sprintf("missing_matrics_%s.csv", time.Now().Format("20060102_150405"))
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	rows := make([][]string, 0, len(sorted))
	for _, k := range sorted {
		rows = append(rows, []string{k})
	}
	return svc.writeCSV(dir, name, []string{"Matric_No"}, rows)
}
