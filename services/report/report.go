// Package reportsvc generates the staff-facing PDF lists: internship
// placements for a supervision session and mentorship follow-ups for a
// re-assessment session.
package reportsvc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/sheet"
	"github.com/JustynLim/SoC-SMS/core/student"
)

const passMark = 40

type Service struct {
	students *student.Service
	scores   *score.Service
	conf     *core.Config
	log      core.Logger
}

func NewService(students *student.Service, scores *score.Service, conf *core.Config, log core.Logger) *Service {
	return &Service{students: students, scores: scores, conf: conf, log: log}
}

// ListRow is one line of a generated list.
type ListRow struct {
	Name          string `json:"name"`
	MatricNo      string `json:"matric_no"`
	IC            string `json:"ic_no"`
	Mobile        string `json:"mobile_no"`
	Email         string `json:"email"`
	FailedCourses string `json:"failed_courses,omitempty"`
}

// InternshipSessions lists the distinct session codes recorded against a
// course: supervision codes (S...) land in slot 1, re-assessment codes (R...)
// in slots 2 and 3.
func (svc *Service) InternshipSessions(courseCode string) ([]string, error) {
	records, err := svc.scores.QueryByCourse(courseCode)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		for i, att := range rec.Attempts {
			code := deferredCode(att.Value)
			if code == "" {
				continue
			}
			prefix := "R"
			if i == 0 {
				prefix = "S"
			}
			if strings.HasPrefix(strings.ToUpper(code), prefix) {
				seen[code] = true
			}
		}
	}
	return sortedKeys(seen), nil
}

// MentorshipSessions lists the distinct R-prefixed session codes across every
// attempt slot. MPU overwrites can push a re-assessment code into any slot,
// so no slot is privileged here.
func (svc *Service) MentorshipSessions() ([]string, error) {
	records, err := svc.scores.QueryAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, att := range rec.Attempts {
			code := strings.ToUpper(deferredCode(att.Value))
			if strings.HasPrefix(code, "R") {
				seen[code] = true
			}
		}
	}
	return sortedKeys(seen), nil
}

// InternshipList returns the students holding the given session code in any
// attempt slot of the course, ordered by name then matric.
func (svc *Service) InternshipList(courseCode, session string) ([]ListRow, error) {
	records, err := svc.scores.QueryByCourse(courseCode)
	if err != nil {
		return nil, err
	}

	var rows []ListRow
	for _, rec := range records {
		if !holdsSession(rec, session, false) {
			continue
		}
		row, err := svc.studentRow(rec.MatricNo)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sortRows(rows)
	return rows, nil
}

// MentorshipList returns the students still failing a course attempted in the
// given re-assessment session, with the failed course codes aggregated per
// student. A course counts as failing when every numeric attempt is below the
// pass mark and slot 1 is neither blank, exempted nor a supervision code.
func (svc *Service) MentorshipList(session string) ([]ListRow, error) {
	records, err := svc.scores.QueryAll()
	if err != nil {
		return nil, err
	}

	failed := make(map[string][]string) // matric -> failed course codes
	for _, rec := range records {
		if !holdsSession(rec, session, true) {
			continue
		}
		if !isFailing(rec) {
			continue
		}
		failed[rec.MatricNo] = append(failed[rec.MatricNo], rec.CourseCode)
	}

	rows := make([]ListRow, 0, len(failed))
	for matric, codes := range failed {
		row, err := svc.studentRow(matric)
		if err != nil {
			return nil, err
		}
		sort.Strings(codes)
		row.FailedCourses = strings.Join(codes, ", ")
		rows = append(rows, row)
	}
	sortRows(rows)
	return rows, nil
}

// InternshipListPDF renders the internship list and returns the written file
// path.
func (svc *Service) InternshipListPDF(courseCode, session string) (string, error) {
	rows, err := svc.InternshipList(courseCode, session)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("internship_list_%s_%s.pdf", courseCode, session)
	title := fmt.Sprintf("Internship List - %s (%s)", courseCode, session)
	return svc.writeListPDF(name, title, rows, false)
}

// MentorshipListPDF renders the mentorship list and returns the written file
// path.
func (svc *Service) MentorshipListPDF(session string) (string, error) {
	rows, err := svc.MentorshipList(session)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("mentorship_list_%s.pdf", session)
	title := fmt.Sprintf("Mentorship List - %s", session)
	return svc.writeListPDF(name, title, rows, true)
}

func (svc *Service) studentRow(matric string) (ListRow, error) {
	std, err := svc.students.GetByMatric(matric)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			// score rows cascade on student deletion, but don't let a stray
			// row sink the whole report
			svc.log.Warn("report: score row without student", map[string]interface{}{"matric": matric})
			return ListRow{MatricNo: matric}, nil
		}
		return ListRow{}, err
	}
	return ListRow{
		Name:     std.Name,
		MatricNo: std.MatricNo,
		IC:       std.IC,
		Mobile:   std.Mobile,
		Email:    std.Email,
	}, nil
}

func (svc *Service) writeListPDF(name, title string, rows []ListRow, withCourses bool) (string, error) {
	if err := os.MkdirAll(svc.conf.ReportDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating report dir")
	}
	path := filepath.Join(svc.conf.ReportDir, name)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	headers := []string{"No.", "Name", "Matric No", "IC No", "Mobile", "Email"}
	widths := []float64{12, 70, 30, 35, 35, 60}
	if withCourses {
		headers = append(headers, "Failed Courses")
		widths = []float64{12, 55, 28, 32, 30, 55, 58}
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		cells := []string{fmt.Sprintf("%d", i+1), row.Name, row.MatricNo, row.IC, row.Mobile, row.Email}
		if withCourses {
			cells = append(cells, row.FailedCourses)
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(0, 8, "No matching students.", "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", errors.Wrap(err, "writing pdf")
	}
	return path, nil
}

// deferredCode extracts the session code of a deferred attempt value, or "".
func deferredCode(v sheet.Value) string {
	if v.Kind != sheet.Deferred {
		return ""
	}
	return strings.TrimSpace(v.Code)
}

// holdsSession reports whether any attempt slot carries the session code.
func holdsSession(rec score.Record, session string, fold bool) bool {
	for _, att := range rec.Attempts {
		code := deferredCode(att.Value)
		if code == "" {
			continue
		}
		if fold && strings.EqualFold(code, session) {
			return true
		}
		if !fold && code == session {
			return true
		}
	}
	return false
}

// isFailing applies the mentorship failure rule to one record.
func isFailing(rec score.Record) bool {
	first := rec.Attempts[0].Value
	switch first.Kind {
	case sheet.NotAttempted, sheet.Exempted:
		return false
	case sheet.Deferred:
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(first.Code)), "S") {
			return false
		}
	}
	for _, att := range rec.Attempts {
		if att.Value.Kind == sheet.Numeric && att.Value.Score >= passMark {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortRows(rows []ListRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].MatricNo < rows[j].MatricNo
	})
}
