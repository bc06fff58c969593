package reportsvc

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/sheet"
	"github.com/JustynLim/SoC-SMS/core/student"
	inmemdb "github.com/JustynLim/SoC-SMS/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                       {}
func (nopLogger) Debug(string, ...interface{})      {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(string, ...interface{})      {}
func (nopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

type reportEnv struct {
	svc     *Service
	stdRepo student.Repository
	scrRepo score.Repository
}

func setup(t *testing.T) *reportEnv {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	log := nopLogger{}
	conf := &core.Config{ReportDir: t.TempDir()}

	stdRepo := inmemdb.NewStudentRepository(db)
	scrRepo := inmemdb.NewScoreRepository(db)
	scrSvc := score.NewService(scrRepo, stdRepo, log, 0)
	stdSvc := student.NewService(stdRepo, scrSvc, nil, log)

	return &reportEnv{
		svc:     NewService(stdSvc, scrSvc, conf, log),
		stdRepo: stdRepo,
		scrRepo: scrRepo,
	}
}

func (env *reportEnv) seedStudent(t *testing.T, name, matric string) {
	t.Helper()
	_, err := env.stdRepo.CreateStudent(student.Student{
		Name:     name,
		MatricNo: matric,
		IC:       "900101-01-1234",
		Mobile:   "0123456789",
		Email:    matric + "@student.test",
		Status:   "Active",
	})
	if err != nil {
		t.Fatalf("seeding student %s: %v", matric, err)
	}
}

func (env *reportEnv) seedRecord(t *testing.T, matric, courseCode string, attempts ...string) {
	t.Helper()
	rec := score.Record{MatricNo: matric, CourseCode: courseCode}
	for i, raw := range attempts {
		rec.Attempts[i].Value = sheet.ParseValue(raw)
	}
	if _, err := env.scrRepo.CreateScore(rec); err != nil {
		t.Fatalf("seeding score %s/%s: %v", matric, courseCode, err)
	}
}

func TestInternshipSessions(t *testing.T) {
	env := setup(t)
	env.seedRecord(t, "B1901", "CSC3101", "S2024-1", "-", "-")
	env.seedRecord(t, "B1902", "CSC3101", "75", "-", "-")
	env.seedRecord(t, "B1903", "CSC3101", "-", "R2024-1", "-")
	// an R code in slot 1 is not a supervision session
	env.seedRecord(t, "B1904", "CSC3101", "R2023-2", "-", "-")
	// other courses do not leak in
	env.seedRecord(t, "B1901", "CSC1101", "S2023-9", "-", "-")

	got, err := env.svc.InternshipSessions("CSC3101")
	if err != nil {
		t.Fatalf("InternshipSessions(): %v", err)
	}
	want := []string{"R2024-1", "S2024-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sessions = %v; want %v", got, want)
	}
}

func TestMentorshipSessions(t *testing.T) {
	env := setup(t)
	env.seedRecord(t, "B1901", "CSC1101", "35", "r2024-1", "-")
	env.seedRecord(t, "B1902", "CSC2101", "38", "R2024-1", "R2024-2")
	env.seedRecord(t, "B1903", "CSC3101", "S2024-1", "-", "-")

	got, err := env.svc.MentorshipSessions()
	if err != nil {
		t.Fatalf("MentorshipSessions(): %v", err)
	}
	want := []string{"R2024-1", "R2024-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sessions = %v; want %v", got, want)
	}
}

func TestInternshipList(t *testing.T) {
	env := setup(t)
	env.seedStudent(t, "Carol Ng", "B1903")
	env.seedStudent(t, "Alice Tan", "B1901")
	env.seedStudent(t, "Bob Lim", "B1902")
	env.seedRecord(t, "B1901", "CSC3101", "S2024-1", "-", "-")
	env.seedRecord(t, "B1903", "CSC3101", "S2024-1", "-", "-")
	env.seedRecord(t, "B1902", "CSC3101", "S2024-2", "-", "-")

	rows, err := env.svc.InternshipList("CSC3101", "S2024-1")
	if err != nil {
		t.Fatalf("InternshipList(): %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2: %+v", len(rows), rows)
	}
	if rows[0].Name != "Alice Tan" || rows[1].Name != "Carol Ng" {
		t.Errorf("rows out of order: %+v", rows)
	}
	if rows[0].IC == "" || rows[0].Email == "" {
		t.Errorf("contact fields not filled: %+v", rows[0])
	}
}

func TestInternshipListOrphanRecord(t *testing.T) {
	env := setup(t)
	env.seedRecord(t, "B9999", "CSC3101", "S2024-1", "-", "-")

	rows, err := env.svc.InternshipList("CSC3101", "S2024-1")
	if err != nil {
		t.Fatalf("InternshipList(): %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows; want 1", len(rows))
	}
	if rows[0].MatricNo != "B9999" || rows[0].Name != "" {
		t.Errorf("orphan row = %+v; want bare matric", rows[0])
	}
}

func TestMentorshipList(t *testing.T) {
	env := setup(t)
	env.seedStudent(t, "Carol Ng", "B1903")
	env.seedStudent(t, "Dave Ooi", "B1904")
	env.seedStudent(t, "Eve Ho", "B1905")

	// failing both attempts, in session: listed
	env.seedRecord(t, "B1903", "CSC1101", "35", "R2024-1", "-")
	// second failed course aggregates onto the same row
	env.seedRecord(t, "B1903", "CSC2101", "38", "r2024-1", "-")
	// recovered on a later attempt: dropped
	env.seedRecord(t, "B1903", "CSC3101", "30", "R2024-1", "55")
	// exempted on first attempt: dropped
	env.seedRecord(t, "B1904", "CSC1101", "Exempted", "R2024-1", "-")
	// supervision code on first attempt: dropped
	env.seedRecord(t, "B1905", "CSC1101", "S2024-2", "R2024-1", "-")
	// failing a different session: dropped
	env.seedRecord(t, "B1904", "CSC2101", "20", "R2023-9", "-")

	rows, err := env.svc.MentorshipList("R2024-1")
	if err != nil {
		t.Fatalf("MentorshipList(): %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows; want 1: %+v", len(rows), rows)
	}
	if rows[0].MatricNo != "B1903" {
		t.Errorf("MatricNo = %q; want B1903", rows[0].MatricNo)
	}
	if rows[0].FailedCourses != "CSC1101, CSC2101" {
		t.Errorf("FailedCourses = %q; want %q", rows[0].FailedCourses, "CSC1101, CSC2101")
	}
}

func TestListPDFs(t *testing.T) {
	env := setup(t)
	env.seedStudent(t, "Alice Tan", "B1901")
	env.seedRecord(t, "B1901", "CSC3101", "S2024-1", "-", "-")
	env.seedRecord(t, "B1901", "CSC1101", "35", "R2024-1", "-")

	path, err := env.svc.InternshipListPDF("CSC3101", "S2024-1")
	if err != nil {
		t.Fatalf("InternshipListPDF(): %v", err)
	}
	if filepath.Base(path) != "internship_list_CSC3101_S2024-1.pdf" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	assertNonEmptyFile(t, path)

	path, err = env.svc.MentorshipListPDF("R2024-1")
	if err != nil {
		t.Fatalf("MentorshipListPDF(): %v", err)
	}
	if filepath.Base(path) != "mentorship_list_R2024-1.pdf" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	assertNonEmptyFile(t, path)
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}
