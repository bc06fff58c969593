package score

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JustynLim/SoC-SMS/core/sheet"
)

var ErrNotFound = errors.New("score record not found")

// SlotCount is the number of attempt slots per (student, course) pair.
const SlotCount = 3

// Attempt is one slot: its value and when it last changed. Timestamps move
// per slot, never wholesale.
type Attempt struct {
	Value     sheet.Value
	UpdatedAt *time.Time
}

// Record is the persisted score row for one (matric, course) natural key.
type Record struct {
	ID         string
	MatricNo   string
	CourseCode string
	Attempts   [SlotCount]Attempt
}

// IsMPUCode reports whether a course code falls under the MPU attempt
// policy. Marksheets carry no classification, so the code prefix decides.
func IsMPUCode(code string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(code)), "MPU")
}

// Seeded builds the enrollment-time record: all slots not-attempted, except
// the third slot of an MPU course which is permanently N/A.
func Seeded(matric, courseCode string, mpu bool, now time.Time) Record {
	rec := Record{MatricNo: matric, CourseCode: courseCode}
	for i := range rec.Attempts {
		rec.Attempts[i].Value = sheet.Value{Kind: sheet.NotAttempted}
	}
	if mpu {
		rec.Attempts[SlotCount-1].Value = sheet.Value{Kind: sheet.NotApplicable}
		rec.Attempts[SlotCount-1].UpdatedAt = &now
	}
	return rec
}

// Diff lists the slots whose value differs from vals, compared on the
// persisted token form.
func (r Record) Diff(vals [SlotCount]sheet.Value) []int {
	var changed []int
	for i := range r.Attempts {
		if r.Attempts[i].Value.String() != vals[i].String() {
			changed = append(changed, i)
		}
	}
	return changed
}

// Apply overwrites the given slots with vals, advancing only their
// timestamps.
func (r *Record) Apply(vals [SlotCount]sheet.Value, slots []int, now time.Time) {
	for _, i := range slots {
		r.Attempts[i].Value = vals[i]
		ts := now
		r.Attempts[i].UpdatedAt = &ts
	}
}

// PickSlot selects the attempt slot a newly arriving mark lands in: the
// first not-attempted slot in order 1..3. With every slot occupied, MPU
// courses overwrite whichever of slots 1-2 changed longest ago (a never-set
// timestamp counts oldest; full ties go to slot 1; slot 3 is never eligible),
// while any other course rejects the mark — there is no fourth attempt.
func PickSlot(rec Record, mpu bool) (int, bool) {
	limit := SlotCount
	if mpu {
		limit = SlotCount - 1
	}
	for i := 0; i < limit; i++ {
		if !rec.Attempts[i].Value.Occupied() {
			return i, true
		}
	}
	if !mpu {
		return 0, false
	}

	t1, t2 := rec.Attempts[0].UpdatedAt, rec.Attempts[1].UpdatedAt
	switch {
	case t1 == nil:
		return 0, true
	case t2 == nil:
		return 1, true
	case t2.Before(*t1):
		return 1, true
	default:
		return 0, true
	}
}

// MissingKeysError aborts a bulk import whose natural keys are not all
// present in the students table; applying it would create orphan rows.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	keys := append([]string(nil), e.Keys...)
	sort.Strings(keys)
	return fmt.Sprintf("%d matric number(s) absent from the students table: %s", len(keys), strings.Join(keys, ", "))
}

// Mark is one incoming marksheet entry after code resolution and CU-ID
// lookup.
type Mark struct {
	MatricNo   string
	CourseCode string
	Value      sheet.Value
}
