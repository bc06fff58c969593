package score

import (
	"errors"
	"testing"
	"time"

	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

type fakeRepo struct {
	records map[string]Record // key: matric|code
	saves   int
	failAll bool
}

func key(matric, code string) string { return matric + "|" + code }

func newFakeRepo() *fakeRepo { return &fakeRepo{records: make(map[string]Record)} }

func (r *fakeRepo) CreateScore(rec Record) (Record, error) {
	r.records[key(rec.MatricNo, rec.CourseCode)] = rec
	return rec, nil
}

func (r *fakeRepo) UpdateScore(rec Record) error {
	r.records[key(rec.MatricNo, rec.CourseCode)] = rec
	return nil
}

func (r *fakeRepo) GetScore(matric, courseCode string) (Record, error) {
	if rec, ok := r.records[key(matric, courseCode)]; ok {
		return rec, nil
	}
	return Record{}, ErrNotFound
}

func (r *fakeRepo) QueryScoresByMatric(matric string) ([]Record, error) {
	var out []Record
	for _, rec := range r.records {
		if rec.MatricNo == matric {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) QueryScoresByCourse(courseCode string) ([]Record, error) {
	var out []Record
	for _, rec := range r.records {
		if rec.CourseCode == courseCode {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) QueryAllScores() ([]Record, error) {
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRepo) DeleteScoresByMatric(matric string) error {
	for k, rec := range r.records {
		if rec.MatricNo == matric {
			delete(r.records, k)
		}
	}
	return nil
}

func (r *fakeRepo) SaveScoreBatch(creates, updates []Record) error {
	if r.failAll {
		return errors.New("boom")
	}
	r.saves++
	for _, rec := range creates {
		r.records[key(rec.MatricNo, rec.CourseCode)] = rec
	}
	for _, rec := range updates {
		r.records[key(rec.MatricNo, rec.CourseCode)] = rec
	}
	return nil
}

type fakeStudents struct{ matrics []string }

func (s fakeStudents) QueryMatrics() ([]string, error) { return s.matrics, nil }

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func grouped(t *testing.T, header []string, keys []string, rows [][]string) *sheet.Grouped {
	t.Helper()
	return sheet.GroupAttempts(header, keys, rows)
}

func TestSeeded(t *testing.T) {
	now := time.Now().UTC()

	plain := Seeded("P1001", "CS1101", false, now)
	for i, att := range plain.Attempts {
		if att.Value.Kind != sheet.NotAttempted || att.UpdatedAt != nil {
			t.Errorf("slot %d = %+v; want untouched '-'", i+1, att)
		}
	}

	mpu := Seeded("P1001", "MPU3113", true, now)
	if mpu.Attempts[2].Value.Kind != sheet.NotApplicable || mpu.Attempts[2].UpdatedAt == nil {
		t.Errorf("MPU slot 3 = %+v; want N/A with timestamp", mpu.Attempts[2])
	}
	if mpu.Attempts[0].Value.Kind != sheet.NotAttempted {
		t.Errorf("MPU slot 1 = %+v", mpu.Attempts[0])
	}
}

func TestPickSlot(t *testing.T) {
	ts := func(sec int) *time.Time {
		t := time.Date(2022, 1, 1, 0, 0, sec, 0, time.UTC)
		return &t
	}
	rec := func(vals [SlotCount]string, stamps [SlotCount]*time.Time) Record {
		var r Record
		for i := range vals {
			r.Attempts[i] = Attempt{Value: sheet.ParseValue(vals[i]), UpdatedAt: stamps[i]}
		}
		return r
	}

	tests := []struct {
		name   string
		rec    Record
		mpu    bool
		want   int
		wantOK bool
	}{
		{"first free slot", rec([3]string{"-", "-", "-"}, [3]*time.Time{}), false, 0, true},
		{"second slot after first occupied", rec([3]string{"60", "-", "-"}, [3]*time.Time{ts(1), nil, nil}), false, 1, true},
		{"third slot for non-MPU", rec([3]string{"60", "55", "-"}, [3]*time.Time{ts(1), ts(2), nil}), false, 2, true},
		{"non-MPU full rejects", rec([3]string{"60", "55", "70"}, [3]*time.Time{ts(1), ts(2), ts(3)}), false, 0, false},
		{"MPU never lands in slot 3", rec([3]string{"60", "-", "N/A"}, [3]*time.Time{ts(1), nil, ts(1)}), true, 1, true},
		{"MPU full overwrites older slot", rec([3]string{"60", "55", "N/A"}, [3]*time.Time{ts(2), ts(1), ts(1)}), true, 1, true},
		{"MPU full overwrites older slot 1", rec([3]string{"60", "55", "N/A"}, [3]*time.Time{ts(1), ts(2), ts(1)}), true, 0, true},
		{"MPU null timestamp counts oldest", rec([3]string{"60", "55", "N/A"}, [3]*time.Time{ts(1), nil, ts(1)}), true, 1, true},
		{"MPU both null prefers slot 1", rec([3]string{"60", "55", "N/A"}, [3]*time.Time{nil, nil, ts(1)}), true, 0, true},
		{"MPU equal timestamps prefer slot 1", rec([3]string{"60", "55", "N/A"}, [3]*time.Time{ts(1), ts(1), ts(1)}), true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickSlot(tt.rec, tt.mpu)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PickSlot() = (%d, %v); want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestServiceImportGrouped(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStudents{matrics: []string{"P1001", "P1002"}}, nopLogger{}, 0)

	g := grouped(t,
		[]string{"CS1101", "Unnamed: 1", "MPU3113"},
		[]string{"P1001", "P1002"},
		[][]string{
			{"80", "-", "65"},
			{"100", "-", "-"},
		})

	res, err := svc.ImportGrouped(g)
	if err != nil {
		t.Fatalf("ImportGrouped() error: %v", err)
	}
	if res.Inserted != 4 || res.Updated != 0 {
		t.Fatalf("first run = %s; want 4 inserts", res)
	}

	rec, err := repo.GetScore("P1001", "CS1101")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Attempts[0].Value.String() != "80" || rec.Attempts[0].UpdatedAt == nil {
		t.Errorf("slot 1 = %+v; want 80 with timestamp", rec.Attempts[0])
	}
	if rec.Attempts[1].Value.String() != "-" || rec.Attempts[1].UpdatedAt != nil {
		t.Errorf("slot 2 = %+v; want untouched", rec.Attempts[1])
	}

	// MPU third slot forced N/A regardless of sheet width
	mpu, _ := repo.GetScore("P1001", "MPU3113")
	if mpu.Attempts[2].Value.Kind != sheet.NotApplicable {
		t.Errorf("MPU slot 3 = %+v; want N/A", mpu.Attempts[2])
	}

	// idempotence: an identical second run writes nothing
	res, err = svc.ImportGrouped(g)
	if err != nil {
		t.Fatalf("second ImportGrouped() error: %v", err)
	}
	if res.Inserted != 0 || res.Updated != 0 || res.Skipped != 4 {
		t.Fatalf("second run = %s; want all skipped", res)
	}
}

func TestServiceImportGroupedTimestampsAdvancePerSlot(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStudents{matrics: []string{"P1001"}}, nopLogger{}, 0)

	g1 := grouped(t, []string{"CS1101", "Unnamed: 1"}, []string{"P1001"}, [][]string{{"55", "-"}})
	if _, err := svc.ImportGrouped(g1); err != nil {
		t.Fatal(err)
	}
	before, _ := repo.GetScore("P1001", "CS1101")
	slot1Stamp := *before.Attempts[0].UpdatedAt

	// only attempt 2 changes; attempt 1 keeps its original timestamp
	g2 := grouped(t, []string{"CS1101", "Unnamed: 1"}, []string{"P1001"}, [][]string{{"55", "68"}})
	res, err := svc.ImportGrouped(g2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 {
		t.Fatalf("result = %s; want one update", res)
	}

	after, _ := repo.GetScore("P1001", "CS1101")
	if !after.Attempts[0].UpdatedAt.Equal(slot1Stamp) {
		t.Error("unchanged slot's timestamp was bumped")
	}
	if after.Attempts[1].UpdatedAt == nil || after.Attempts[1].Value.String() != "68" {
		t.Errorf("slot 2 = %+v; want new value with fresh timestamp", after.Attempts[1])
	}
}

func TestServiceImportGroupedAbortsOnMissingKeys(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStudents{matrics: []string{"P1001"}}, nopLogger{}, 0)

	g := grouped(t, []string{"CS1101"},
		[]string{"P1001", "GHOST1", "GHOST2", "GHOST1"},
		[][]string{{"80"}, {"70"}, {"60"}, {"50"}})

	res, err := svc.ImportGrouped(g)
	var missing *MissingKeysError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v; want MissingKeysError", err)
	}
	if len(missing.Keys) != 2 {
		t.Errorf("missing keys = %v; want deduplicated [GHOST1 GHOST2]", missing.Keys)
	}
	if res.Inserted != 0 || res.Updated != 0 || res.Skipped != 2 {
		t.Errorf("result = %s; want (0, 0, 2 skipped)", res)
	}
	if len(repo.records) != 0 {
		t.Error("database mutated despite the abort")
	}
}

func TestServiceImportMarks(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStudents{}, nopLogger{}, 0)
	now := time.Now().UTC()

	// enrolled rows
	seedCS := Seeded("P1001", "CS1101", false, now)
	repo.records[key("P1001", "CS1101")] = seedCS

	mark := func(v string) []Mark {
		return []Mark{{MatricNo: "P1001", CourseCode: "CS1101", Value: sheet.ParseValue(v)}}
	}

	res, err := svc.ImportMarks(mark("48"))
	if err != nil || res.Updated != 1 {
		t.Fatalf("first mark: res=%s err=%v", res, err)
	}
	rec, _ := repo.GetScore("P1001", "CS1101")
	if rec.Attempts[0].Value.String() != "48" {
		t.Fatalf("slot 1 = %+v; want 48", rec.Attempts[0])
	}

	// re-running the same mark is a no-op
	res, err = svc.ImportMarks(mark("48"))
	if err != nil || res.Updated != 0 || res.Skipped != 1 {
		t.Fatalf("re-run: res=%s err=%v; want skipped", res, err)
	}

	// a different mark takes the next slot
	res, err = svc.ImportMarks(mark("61"))
	if err != nil || res.Updated != 1 {
		t.Fatalf("second mark: res=%s err=%v", res, err)
	}
	rec, _ = repo.GetScore("P1001", "CS1101")
	if rec.Attempts[1].Value.String() != "61" {
		t.Errorf("slot 2 = %+v; want 61", rec.Attempts[1])
	}

	// unenrolled pair skips, never creates
	res, err = svc.ImportMarks([]Mark{{MatricNo: "P9999", CourseCode: "CS1101", Value: sheet.ParseValue("70")}})
	if err != nil || res.Skipped != 1 {
		t.Fatalf("unenrolled: res=%s err=%v", res, err)
	}
	if _, err := repo.GetScore("P9999", "CS1101"); err != ErrNotFound {
		t.Error("marksheet import created an enrollment")
	}
}

func TestServiceSeedEnrollment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStudents{}, nopLogger{}, 0)
	now := time.Now().UTC()

	courses := []course.Course{
		{Code: "CS1101", Classification: "Core"},
		{Code: "MPU3113", Classification: "MPU Compulsory"},
	}
	res, err := svc.SeedEnrollment("P1001", courses, now)
	if err != nil || res.Inserted != 2 {
		t.Fatalf("res=%s err=%v; want 2 inserts", res, err)
	}

	mpu, _ := repo.GetScore("P1001", "MPU3113")
	if mpu.Attempts[2].Value.Kind != sheet.NotApplicable {
		t.Errorf("MPU slot 3 = %+v; want N/A", mpu.Attempts[2])
	}

	// seeding again skips existing pairs
	res, err = svc.SeedEnrollment("P1001", courses, now)
	if err != nil || res.Inserted != 0 || res.Skipped != 2 {
		t.Fatalf("res=%s err=%v; want all skipped", res, err)
	}
}
