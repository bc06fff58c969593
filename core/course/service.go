package course

import (
	"errors"
	"strings"
	"time"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

var (
	// errors
	ErrNotFound       = errors.New("course not found")
	ErrUnresolvedCode = errors.New("course code cannot be uniquely resolved")
	ErrCodeExists     = errors.New("a course with this code already exists for the program")
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		// UpdateCourse matches on the (code, program) natural key and
		// reports how many rows it touched.
		UpdateCourse(crs Course) (int64, error)
		QueryAllCourses() ([]Course, error)
		GetCourse(code, program string) (Course, error)
		QueryCourseCodes() ([]string, error)
		// QueryYear1Codes returns the codes labelled "Year 1".
		QueryYear1Codes() ([]string, error)
		QueryVersions() ([]time.Time, error)
		QueryCoursesByVersion(version time.Time) ([]Course, error)
		DeleteCourse(code, program string) error
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) Create(nc NewCourse) (Course, error) {
	version, err := ParseVersion(nc.Version)
	if err != nil {
		return Course{}, err
	}
	crs := nc.course(version)
	if _, err := svc.repo.GetCourse(crs.Code, crs.Program); err == nil {
		return Course{}, core.NewValidationError(ErrCodeExists, core.FieldError{Field: "code", Error: ErrCodeExists.Error()})
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *Service) Get(code, program string) (Course, error) {
	return svc.repo.GetCourse(core.CleanString(code), core.CleanString(program))
}

func (svc *Service) Versions() ([]time.Time, error) {
	return svc.repo.QueryVersions()
}

func (svc *Service) QueryByVersion(version time.Time) ([]Course, error) {
	return svc.repo.QueryCoursesByVersion(version)
}

func (svc *Service) Year1Codes() (map[string]bool, error) {
	codes, err := svc.repo.QueryYear1Codes()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[strings.ToUpper(c)] = true
	}
	return set, nil
}

// Resolve canonicalizes a short or legacy course code against the stored
// code set.
func (svc *Service) Resolve(short string) (string, error) {
	codes, err := svc.repo.QueryCourseCodes()
	if err != nil {
		return "", err
	}
	return ResolveCode(codes, short)
}

func (svc *Service) Delete(code, program string) error {
	return svc.repo.DeleteCourse(code, program)
}

// ImportRows reconciles classified course-structure rows for one program and
// version. Updates are attempted before inserts so re-importing a known
// (code, program) pair can never create a duplicate. Row failures are
// tallied, not fatal.
func (svc *Service) ImportRows(rows []sheet.CourseRow, program string, version time.Time) (core.ImportResult, error) {
	var res core.ImportResult
	for _, row := range rows {
		crs := Course{
			Code:           row.Code,
			Program:        program,
			Module:         row.Module,
			Classification: row.Classification,
			PreCoReq:       row.PreCoReq,
			CreditHour:     row.CreditHour,
			LectHrWk:       row.LectHrWk,
			TutHrWk:        row.TutHrWk,
			LabHrWk:        row.LabHrWk,
			BLHrWk:         row.BLHrWk,
			CWCredits:      row.CWCredits,
			EXCredits:      row.EXCredits,
			Level:          row.Level,
			Lecturer:       row.Lecturer,
			Year:           row.Year,
			Status:         row.Status,
			Priority:       row.Priority,
			Version:        version,
		}

		affected, err := svc.repo.UpdateCourse(crs)
		if err != nil {
			svc.log.Warn("course import: update failed", map[string]interface{}{"code": crs.Code, "error": err.Error()})
			res.Errored++
			continue
		}
		if affected > 0 {
			res.Updated++
			continue
		}
		if _, err := svc.repo.CreateCourse(crs); err != nil {
			svc.log.Warn("course import: insert failed", map[string]interface{}{"code": crs.Code, "error": err.Error()})
			res.Errored++
			continue
		}
		res.Inserted++
	}
	return res, nil
}

// ParseVersion parses a course-version date. Unlike other date fields this
// is a hard error: the version decides which course set gets seeded.
func ParseVersion(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "2006-01", "01/2006", sheet.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.NewValidationError(
		errors.New("invalid course version date"),
		core.FieldError{Field: "version", Error: "expected YYYY-MM-DD or YYYY-MM"},
	)
}
