package course

import (
	"errors"
	"testing"
	"time"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

type fakeRepo struct {
	courses []Course
	failOn  string // code whose writes fail
}

func (r *fakeRepo) CreateCourse(crs Course) (Course, error) {
	if crs.Code == r.failOn {
		return Course{}, errors.New("boom")
	}
	r.courses = append(r.courses, crs)
	return crs, nil
}

func (r *fakeRepo) UpdateCourse(crs Course) (int64, error) {
	if crs.Code == r.failOn {
		return 0, errors.New("boom")
	}
	for i, c := range r.courses {
		if c.Code == crs.Code && c.Program == crs.Program {
			crs.ID = c.ID
			r.courses[i] = crs
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepo) QueryAllCourses() ([]Course, error) { return r.courses, nil }

func (r *fakeRepo) GetCourse(code, program string) (Course, error) {
	for _, c := range r.courses {
		if c.Code == code && c.Program == program {
			return c, nil
		}
	}
	return Course{}, ErrNotFound
}

func (r *fakeRepo) QueryCourseCodes() ([]string, error) {
	codes := make([]string, 0, len(r.courses))
	for _, c := range r.courses {
		codes = append(codes, c.Code)
	}
	return codes, nil
}

func (r *fakeRepo) QueryYear1Codes() ([]string, error) {
	var codes []string
	for _, c := range r.courses {
		if c.Year == "Year 1" {
			codes = append(codes, c.Code)
		}
	}
	return codes, nil
}

func (r *fakeRepo) QueryVersions() ([]time.Time, error) { return nil, nil }

func (r *fakeRepo) QueryCoursesByVersion(time.Time) ([]Course, error) { return r.courses, nil }

func (r *fakeRepo) DeleteCourse(code, program string) error { return nil }

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestServiceImportRows(t *testing.T) {
	version := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := []sheet.CourseRow{
		{Code: "CS1101", Module: "Programming I", Classification: "Core", CreditHour: 4, Year: "Year 1", Status: "Active", Priority: 1},
		{Code: "MPU3113", Module: "Ethnic Relations", Classification: "MPU Compulsory", CreditHour: 3, Year: "Compulsory", Status: "Active"},
	}

	repo := &fakeRepo{}
	svc := NewService(repo, nopLogger{})

	res, err := svc.ImportRows(rows, "BCS", version)
	if err != nil {
		t.Fatalf("ImportRows() error: %v", err)
	}
	if res.Inserted != 2 || res.Updated != 0 || res.Errored != 0 {
		t.Fatalf("first run = %s; want 2 inserts", res)
	}

	// re-import must update the existing natural keys, never duplicate
	rows[0].Lecturer = "Dr. Wong"
	res, err = svc.ImportRows(rows, "BCS", version)
	if err != nil {
		t.Fatalf("ImportRows() error: %v", err)
	}
	if res.Inserted != 0 || res.Updated != 2 {
		t.Fatalf("second run = %s; want 2 updates", res)
	}
	if len(repo.courses) != 2 {
		t.Errorf("stored %d courses; want 2", len(repo.courses))
	}
	if got, _ := repo.GetCourse("CS1101", "BCS"); got.Lecturer != "Dr. Wong" {
		t.Errorf("lecturer = %q; want update applied", got.Lecturer)
	}
}

func TestServiceImportRowsTalliesRowFailures(t *testing.T) {
	repo := &fakeRepo{failOn: "BAD101"}
	svc := NewService(repo, nopLogger{})

	rows := []sheet.CourseRow{
		{Code: "BAD101", Module: "x", Classification: "Core"},
		{Code: "CS1101", Module: "Programming I", Classification: "Core"},
	}
	res, err := svc.ImportRows(rows, "BCS", time.Now())
	if err != nil {
		t.Fatalf("ImportRows() error: %v", err)
	}
	if res.Errored != 1 || res.Inserted != 1 {
		t.Errorf("result = %s; want the bad row tallied and the rest applied", res)
	}
}

func TestParseVersion(t *testing.T) {
	if _, err := ParseVersion("2021-09"); err != nil {
		t.Errorf("ParseVersion(2021-09) error: %v", err)
	}
	if _, err := ParseVersion("2021-09-01"); err != nil {
		t.Errorf("ParseVersion(2021-09-01) error: %v", err)
	}

	_, err := ParseVersion("september")
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("ParseVersion(september) error = %v; want validation error", err)
	}
}

func TestServiceYear1Codes(t *testing.T) {
	repo := &fakeRepo{courses: []Course{
		{Code: "cs1101", Program: "BCS", Year: "Year 1"},
		{Code: "CS2201", Program: "BCS", Year: "Year 2"},
	}}
	svc := NewService(repo, nopLogger{})

	set, err := svc.Year1Codes()
	if err != nil {
		t.Fatalf("Year1Codes() error: %v", err)
	}
	if !set["CS1101"] || set["CS2201"] || len(set) != 1 {
		t.Errorf("set = %v; want upper-cased year-1 codes only", set)
	}
}
