package score

import (
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

const defaultBatchSize = 200

type (
	// StudentDirectory is the slice of the student service the reconciler
	// needs for its orphan pre-check.
	StudentDirectory interface {
		QueryMatrics() ([]string, error)
	}

	Repository interface {
		CreateScore(rec Record) (Record, error)
		UpdateScore(rec Record) error
		GetScore(matric, courseCode string) (Record, error)
		QueryScoresByMatric(matric string) ([]Record, error)
		QueryScoresByCourse(courseCode string) ([]Record, error)
		QueryAllScores() ([]Record, error)
		DeleteScoresByMatric(matric string) error
		// SaveScoreBatch applies one flush atomically; a failure rolls the
		// whole flush back.
		SaveScoreBatch(creates, updates []Record) error
	}

	Service struct {
		repo      Repository
		students  StudentDirectory
		log       core.Logger
		batchSize int
	}
)

func NewService(repo Repository, students StudentDirectory, log core.Logger, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{repo: repo, students: students, log: log, batchSize: batchSize}
}

func (svc *Service) GetByKey(matric, courseCode string) (Record, error) {
	return svc.repo.GetScore(core.CleanString(matric), core.CleanString(courseCode))
}

func (svc *Service) QueryByMatric(matric string) ([]Record, error) {
	return svc.repo.QueryScoresByMatric(core.CleanString(matric))
}

func (svc *Service) QueryByCourse(courseCode string) ([]Record, error) {
	return svc.repo.QueryScoresByCourse(core.CleanString(courseCode))
}

func (svc *Service) QueryAll() ([]Record, error) {
	return svc.repo.QueryAllScores()
}

func (svc *Service) DeleteScoresByMatric(matric string) error {
	return svc.repo.DeleteScoresByMatric(matric)
}

// SeedEnrollment creates the blank score rows for one student across a
// course set. Pairs that already have a row are left alone.
func (svc *Service) SeedEnrollment(matric string, courses []course.Course, now time.Time) (core.ImportResult, error) {
	var res core.ImportResult
	for _, crs := range courses {
		if _, err := svc.repo.GetScore(matric, crs.Code); err == nil {
			res.Skipped++
			continue
		} else if err != ErrNotFound {
			res.Errored++
			continue
		}
		rec := Seeded(matric, crs.Code, crs.IsMPU(), now)
		rec.ID = uuid.NewString()
		if _, err := svc.repo.CreateScore(rec); err != nil {
			svc.log.Warn("enrollment seeding: insert failed", map[string]interface{}{"matric": matric, "course": crs.Code, "error": err.Error()})
			res.Errored++
			continue
		}
		res.Inserted++
	}
	return res, nil
}

var attemptColRegex = regexp.MustCompile(`^(.+)_Attempt([0-9]+)$`)

type colRef struct {
	code string
	slot int
}

func parseColumns(cols []string) []colRef {
	refs := make([]colRef, len(cols))
	for i, c := range cols {
		if m := attemptColRegex.FindStringSubmatch(c); m != nil {
			n, _ := strconv.Atoi(m[2])
			refs[i] = colRef{code: m[1], slot: n - 1}
			continue
		}
		refs[i] = colRef{code: c, slot: 0}
	}
	return refs
}

// ImportGrouped reconciles a grouped datasheet against the scores table.
//
// Every natural key in the sheet must already exist in the students table;
// otherwise nothing is written and a MissingKeysError reports the strays,
// with their count in Skipped. Per (matric, course): unknown pairs insert,
// rows with changed slots update (advancing only the changed slots'
// timestamps), identical rows skip. Writes are flushed in fixed-size
// batches; a failed flush stops the import with the committed counters
// intact.
func (svc *Service) ImportGrouped(g *sheet.Grouped) (core.ImportResult, error) {
	var res core.ImportResult
	res.Errored += len(g.Errors)

	matrics, err := svc.students.QueryMatrics()
	if err != nil {
		return res, err
	}
	known := make(map[string]bool, len(matrics))
	for _, m := range matrics {
		known[m] = true
	}
	var missing []string
	seen := make(map[string]bool)
	for _, row := range g.Rows {
		if !known[row.Key] && !seen[row.Key] {
			missing = append(missing, row.Key)
			seen[row.Key] = true
		}
	}
	if len(missing) > 0 {
		res.Skipped = len(missing)
		return res, &MissingKeysError{Keys: missing}
	}

	refs := parseColumns(g.Columns)
	now := time.Now().UTC()
	var creates, updates []Record

	flush := func() error {
		if len(creates) == 0 && len(updates) == 0 {
			return nil
		}
		if err := svc.repo.SaveScoreBatch(creates, updates); err != nil {
			return err
		}
		res.Inserted += len(creates)
		res.Updated += len(updates)
		creates, updates = nil, nil
		return nil
	}

	for _, row := range g.Rows {
		// fold the flat columns back into per-course slot vectors,
		// preserving column order
		var codes []string
		vals := make(map[string]*[SlotCount]sheet.Value)
		for i, ref := range refs {
			v, ok := vals[ref.code]
			if !ok {
				v = &[SlotCount]sheet.Value{}
				for s := range v {
					v[s] = sheet.Value{Kind: sheet.NotAttempted}
				}
				vals[ref.code] = v
				codes = append(codes, ref.code)
			}
			if i < len(row.Values) && ref.slot < SlotCount {
				v[ref.slot] = sheet.ParseValue(row.Values[i])
			}
		}

		for _, code := range codes {
			v := *vals[code]
			if IsMPUCode(code) {
				v[SlotCount-1] = sheet.Value{Kind: sheet.NotApplicable}
			}

			existing, err := svc.repo.GetScore(row.Key, code)
			switch {
			case err == ErrNotFound:
				rec := Record{ID: uuid.NewString(), MatricNo: row.Key, CourseCode: code}
				for i, val := range v {
					rec.Attempts[i].Value = val
					if val.Occupied() {
						ts := now
						rec.Attempts[i].UpdatedAt = &ts
					}
				}
				creates = append(creates, rec)
			case err != nil:
				res.Errored++
				continue
			default:
				changed := existing.Diff(v)
				if len(changed) == 0 {
					res.Skipped++
					continue
				}
				existing.Apply(v, changed, now)
				updates = append(updates, existing)
			}

			if len(creates)+len(updates) >= svc.batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
	return res, flush()
}

// ImportMarks applies resolved marksheet entries one slot at a time.
//
// A missing (matric, course) row skips the mark — marksheets never create
// enrollments. A mark identical to the most recently written slot also
// skips, so re-importing the same sheet is a no-op. Otherwise the slot
// chosen by PickSlot is overwritten and its timestamp advanced.
func (svc *Service) ImportMarks(marks []Mark) (core.ImportResult, error) {
	var res core.ImportResult
	now := time.Now().UTC()
	var updates []Record

	flush := func() error {
		if len(updates) == 0 {
			return nil
		}
		if err := svc.repo.SaveScoreBatch(nil, updates); err != nil {
			return err
		}
		res.Updated += len(updates)
		updates = nil
		return nil
	}

	for _, m := range marks {
		rec, err := svc.repo.GetScore(m.MatricNo, m.CourseCode)
		if err == ErrNotFound {
			res.Skipped++
			continue
		}
		if err != nil {
			res.Errored++
			continue
		}

		if s, ok := latestOccupied(rec); ok && rec.Attempts[s].Value.String() == m.Value.String() {
			res.Skipped++
			continue
		}

		slot, ok := PickSlot(rec, IsMPUCode(m.CourseCode))
		if !ok {
			res.Skipped++
			continue
		}
		ts := now
		rec.Attempts[slot] = Attempt{Value: m.Value, UpdatedAt: &ts}
		updates = append(updates, rec)

		if len(updates) >= svc.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	return res, flush()
}

// latestOccupied returns the occupied slot with the newest timestamp,
// ignoring the N/A sentinel. Slots without timestamps lose to any with one.
func latestOccupied(rec Record) (int, bool) {
	best, found := -1, false
	for i, att := range rec.Attempts {
		if !att.Value.Occupied() || att.Value.Kind == sheet.NotApplicable {
			continue
		}
		if !found {
			best, found = i, true
			continue
		}
		cur, prev := att.UpdatedAt, rec.Attempts[best].UpdatedAt
		if prev == nil && cur != nil {
			best = i
		} else if cur != nil && prev != nil && cur.After(*prev) {
			best = i
		}
	}
	return best, found
}
