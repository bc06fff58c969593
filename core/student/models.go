package student

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

var (
	// errors
	ErrNotFound     = errors.New("student not found")
	ErrMatricExists = errors.New("a student with this matric number already exists")
)

// Student statuses, one per source sheet.
const (
	StatusActive   = "Active"
	StatusGraduate = "Graduate"
	StatusWithdraw = "Withdraw"
)

var Statuses = []string{StatusActive, StatusGraduate, StatusWithdraw}

// Student is one student row. MatricNo is the natural key; ID is a
// surrogate. IC is Fernet-encrypted at rest and decrypted on the way out of
// the service.
type Student struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Cohort      string `db:"cohort" json:"cohort"` // DD/MM/YYYY
	Sem         string `db:"sem" json:"sem"`
	CUID        int    `db:"cu_id" json:"cu_id"`
	IC          string `db:"ic_no" json:"ic_no"`
	Mobile      string `db:"mobile_no" json:"mobile_no"`
	Email       string `db:"email" json:"email"`
	BM          string `db:"bm" json:"bm"`
	English     string `db:"english" json:"english"`
	EntryQ      string `db:"entry_q" json:"entry_q"`
	MatricNo    string `db:"matric_no" json:"matric_no"`
	Status      string `db:"status" json:"status"`
	GraduatedOn string `db:"graduated_on" json:"graduated_on"`
}

// normalizedFields flattens the comparable fields for reconciliation:
// trimmed strings, ints stringified, empty and placeholder treated alike by
// the caller having already defaulted them.
func (s Student) normalizedFields() []string {
	return []string{
		core.CleanString(s.Name),
		core.CleanString(s.Cohort),
		core.CleanString(s.Sem),
		strconv.Itoa(s.CUID),
		core.CleanString(s.IC),
		core.CleanString(s.Mobile),
		core.CleanString(s.Email),
		core.CleanString(s.BM),
		core.CleanString(s.English),
		core.CleanString(s.EntryQ),
		core.CleanString(s.Status),
		core.CleanString(s.GraduatedOn),
	}
}

// Changed reports whether any comparable field differs from other.
func (s Student) Changed(other Student) bool {
	a, b := s.normalizedFields(), other.normalizedFields()
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

var nonPhoneRegex = regexp.MustCompile(`[^0-9+]`)

// CleanMobile strips separators from a phone number, keeping digits and a
// leading +.
func CleanMobile(raw string) string {
	s := nonPhoneRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	if i := strings.LastIndex(s, "+"); i > 0 {
		s = strings.ReplaceAll(s, "+", "")
	}
	return s
}

// entity sub-header -> field mapping; keys are cleaned headers
var entityFieldAliases = map[string]string{
	"name":       "name",
	"cohort":     "cohort",
	"sem":        "sem",
	"cu id":      "cu_id",
	"cu-id":      "cu_id",
	"ic no":      "ic_no",
	"mobile no":  "mobile_no",
	"mobile no.": "mobile_no",
	"email":      "email",
	"bm":         "bm",
	"english":    "english",
	"entry-q":    "entry_q",
	"entry q":    "entry_q",
	"matric no":  "matric_no",
	"grad":       "graduated_on",
}

// FromEntityBlock maps a segmented entity block onto Student records with
// the given status. Headers are matched case-insensitively via the alias
// table; unrecognized (synthesized) columns are ignored. Rows lacking a
// matric number or carrying a non-numeric CU ID are returned as warnings
// and dropped.
func FromEntityBlock(block sheet.Block, status string) ([]Student, []string) {
	fields := make([]string, len(block.Header))
	for i, h := range block.Header {
		fields[i] = entityFieldAliases[core.CleanString(h, true)]
	}

	var (
		students []Student
		warnings []string
	)
	for ri, row := range block.Rows {
		var (
			s      = Student{Status: status, GraduatedOn: sheet.NotAttemptedToken}
			rowErr string
		)
		for i, field := range fields {
			if field == "" || i >= len(row) {
				continue
			}
			v := core.CleanString(row[i])
			switch field {
			case "name":
				s.Name = v
			case "cohort":
				s.Cohort = v
			case "sem":
				s.Sem = v
			case "cu_id":
				if v == "" {
					continue
				}
				id, err := strconv.Atoi(v)
				if err != nil {
					rowErr = fmt.Sprintf("row %d: non-numeric CU ID %q", ri+1, v)
					continue
				}
				s.CUID = id
			case "ic_no":
				s.IC = v
			case "mobile_no":
				s.Mobile = CleanMobile(v)
			case "email":
				s.Email = core.CleanString(v, true)
			case "bm":
				s.BM = v
			case "english":
				s.English = v
			case "entry_q":
				s.EntryQ = v
			case "matric_no":
				s.MatricNo = v
			case "graduated_on":
				if v != "" {
					s.GraduatedOn = v
				}
			}
		}
		if rowErr != "" {
			warnings = append(warnings, rowErr)
			continue
		}
		if s.MatricNo == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing matric number", ri+1))
			continue
		}
		students = append(students, s)
	}
	return students, warnings
}

// NewStudent holds validated input for a manual student creation.
type NewStudent struct {
	Name     string `json:"name" validate:"required"`
	Cohort   string `json:"cohort" validate:"required"`
	Sem      string `json:"sem"`
	CUID     int    `json:"cu_id" validate:"min=0"`
	IC       string `json:"ic_no"`
	Mobile   string `json:"mobile_no"`
	Email    string `json:"email" validate:"omitempty,email"`
	BM       string `json:"bm"`
	English  string `json:"english"`
	EntryQ   string `json:"entry_q"`
	MatricNo string `json:"matric_no" validate:"required,matricno"`
	Status   string `json:"status" validate:"required,oneof=Active Graduate Withdraw"`
	// Version selects the course set whose scores get seeded.
	Version string `json:"version" validate:"required"`
	Program string `json:"program" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.MatricNo = core.CleanString(ns.MatricNo)
	ns.Email = core.CleanString(ns.Email, true)
	ns.Mobile = CleanMobile(ns.Mobile)
	if d, ok := sheet.NormalizeDate(ns.Cohort); ok {
		ns.Cohort = d
	}
	return core.Validate.Struct(ns)
}

func (ns NewStudent) student() Student {
	return Student{
		Name:        ns.Name,
		Cohort:      ns.Cohort,
		Sem:         ns.Sem,
		CUID:        ns.CUID,
		IC:          ns.IC,
		Mobile:      ns.Mobile,
		Email:       ns.Email,
		BM:          ns.BM,
		English:     ns.English,
		EntryQ:      ns.EntryQ,
		MatricNo:    ns.MatricNo,
		Status:      ns.Status,
		GraduatedOn: sheet.NotAttemptedToken,
	}
}

// UpdateStudent defines what may be modified on an existing Student.
type UpdateStudent struct {
	Name        string `json:"name"`
	Cohort      string `json:"cohort"`
	Sem         string `json:"sem"`
	CUID        *int   `json:"cu_id"`
	IC          string `json:"ic_no"`
	Mobile      string `json:"mobile_no"`
	Email       string `json:"email" validate:"omitempty,email"`
	BM          string `json:"bm"`
	English     string `json:"english"`
	EntryQ      string `json:"entry_q"`
	Status      string `json:"status" validate:"omitempty,oneof=Active Graduate Withdraw"`
	GraduatedOn string `json:"graduated_on"`
}

func (us *UpdateStudent) Validate() error {
	us.Email = core.CleanString(us.Email, true)
	if us.Mobile != "" {
		us.Mobile = CleanMobile(us.Mobile)
	}
	return core.Validate.Struct(us)
}

// apply overlays the non-empty update fields onto orig.
func (us UpdateStudent) apply(orig Student) Student {
	set := func(dst *string, v string) {
		if v = core.CleanString(v); v != "" {
			*dst = v
		}
	}
	set(&orig.Name, us.Name)
	set(&orig.Cohort, us.Cohort)
	set(&orig.Sem, us.Sem)
	if us.CUID != nil {
		orig.CUID = *us.CUID
	}
	set(&orig.IC, us.IC)
	set(&orig.Mobile, us.Mobile)
	set(&orig.Email, us.Email)
	set(&orig.BM, us.BM)
	set(&orig.English, us.English)
	set(&orig.EntryQ, us.EntryQ)
	set(&orig.Status, us.Status)
	set(&orig.GraduatedOn, us.GraduatedOn)
	return orig
}

// CohortYear extracts the intake year from the DD/MM/YYYY cohort date, or 0
// when the date is malformed.
func (s Student) CohortYear() int {
	parts := strings.Split(s.Cohort, "/")
	if len(parts) != 3 {
		return 0
	}
	year, _ := strconv.Atoi(parts[2])
	return year
}
