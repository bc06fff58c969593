package course

import (
	"strings"
	"time"
)

// Course is one row of the course structure. (Code, Program) is the natural
// key; ID is a surrogate.
type Course struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"course_code" json:"code"`
	Program        string    `db:"program_code" json:"program"`
	Module         string    `db:"module" json:"module"`
	Classification string    `db:"classification" json:"classification"`
	PreCoReq       string    `db:"pre_co_req" json:"pre_co_req"`
	CreditHour     int       `db:"credit_hour" json:"credit_hour"`
	LectHrWk       string    `db:"lect_hr_wk" json:"lect_hr_wk"`
	TutHrWk        string    `db:"tut_hr_wk" json:"tut_hr_wk"`
	LabHrWk        string    `db:"lab_hr_wk" json:"lab_hr_wk"`
	BLHrWk         string    `db:"bl_hr_wk" json:"bl_hr_wk"`
	CWCredits      int       `db:"cw_credits" json:"cw_credits"`
	EXCredits      int       `db:"ex_credits" json:"ex_credits"`
	Level          int       `db:"course_level" json:"level"`
	Lecturer       string    `db:"lecturer" json:"lecturer"`
	Year           string    `db:"course_year" json:"year"`
	Status         string    `db:"status" json:"status"`
	Priority       int       `db:"priority" json:"priority"`
	Version        time.Time `db:"version" json:"version"`
}

// IsMPU reports whether the course falls under the MPU attempt policy
// (2 meaningful attempts, slot 3 permanently N/A).
func (c Course) IsMPU() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(c.Classification)), "MPU") ||
		strings.HasPrefix(strings.ToUpper(strings.TrimSpace(c.Code)), "MPU")
}

// NewCourse holds validated input for a manual course creation.
type NewCourse struct {
	Code           string `json:"code" validate:"required,coursecode"`
	Program        string `json:"program" validate:"required"`
	Module         string `json:"module" validate:"required"`
	Classification string `json:"classification" validate:"required"`
	PreCoReq       string `json:"pre_co_req"`
	CreditHour     int    `json:"credit_hour" validate:"min=0"`
	Level          int    `json:"level" validate:"min=0"`
	Lecturer       string `json:"lecturer"`
	Year           string `json:"year" validate:"required"`
	Version        string `json:"version" validate:"required"`
}

func (nc NewCourse) course(version time.Time) Course {
	year := strings.Join(strings.Fields(nc.Year), " ")
	priority := nc.Level
	if strings.EqualFold(year, "Compulsory") {
		year = "Compulsory"
		priority = 0
	}
	status := "Active"
	if nc.CreditHour == 0 {
		status = "Inactive"
	}
	return Course{
		Code:           strings.TrimSpace(nc.Code),
		Program:        strings.TrimSpace(nc.Program),
		Module:         strings.TrimSpace(nc.Module),
		Classification: strings.TrimSpace(nc.Classification),
		PreCoReq:       strings.TrimSpace(nc.PreCoReq),
		CreditHour:     nc.CreditHour,
		Level:          nc.Level,
		Lecturer:       strings.TrimSpace(nc.Lecturer),
		Year:           year,
		Status:         status,
		Priority:       priority,
		Version:        version,
	}
}
