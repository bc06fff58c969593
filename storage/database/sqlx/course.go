package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO courses (id, course_code, program_code, module, classification, pre_co_req, credit_hour,
		                     lect_hr_wk, tut_hr_wk, lab_hr_wk, bl_hr_wk, cw_credits, ex_credits,
		                     course_level, lecturer, course_year, status, priority, version)
		VALUES (:id, :course_code, :program_code, :module, :classification, :pre_co_req, :credit_hour,
		        :lect_hr_wk, :tut_hr_wk, :lab_hr_wk, :bl_hr_wk, :cw_credits, :ex_credits,
		        :course_level, :lecturer, :course_year, :status, :priority, :version)`
	if _, err := repo.db.NamedExec(query, crs); err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (int64, error) {
	const query = `
		UPDATE courses
		SET module = :module, classification = :classification, pre_co_req = :pre_co_req,
		    credit_hour = :credit_hour, lect_hr_wk = :lect_hr_wk, tut_hr_wk = :tut_hr_wk,
		    lab_hr_wk = :lab_hr_wk, bl_hr_wk = :bl_hr_wk, cw_credits = :cw_credits,
		    ex_credits = :ex_credits, course_level = :course_level, lecturer = :lecturer,
		    course_year = :course_year, status = :status, priority = :priority, version = :version
		WHERE course_code = :course_code AND program_code = :program_code`
	res, err := repo.db.NamedExec(query, crs)
	if err != nil {
		return 0, errors.Wrap(err, "updating course")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "updating course")
	}
	return n, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.Select(&courses, `SELECT * FROM courses ORDER BY priority, course_code`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(code, program string) (course.Course, error) {
	var crs course.Course
	err := repo.db.Get(&crs, `SELECT * FROM courses WHERE course_code = $1 AND program_code = $2`, code, program)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryCourseCodes() ([]string, error) {
	codes := make([]string, 0)
	if err := repo.db.Select(&codes, `SELECT DISTINCT course_code FROM courses ORDER BY course_code`); err != nil {
		return nil, errors.Wrap(err, "querying course codes")
	}
	return codes, nil
}

func (repo *courseRepository) QueryYear1Codes() ([]string, error) {
	codes := make([]string, 0)
	if err := repo.db.Select(&codes, `SELECT DISTINCT course_code FROM courses WHERE lower(course_year) = 'year 1' ORDER BY course_code`); err != nil {
		return nil, errors.Wrap(err, "querying year 1 course codes")
	}
	return codes, nil
}

func (repo *courseRepository) QueryVersions() ([]time.Time, error) {
	versions := make([]time.Time, 0)
	if err := repo.db.Select(&versions, `SELECT DISTINCT version FROM courses ORDER BY version`); err != nil {
		return nil, errors.Wrap(err, "querying course versions")
	}
	return versions, nil
}

func (repo *courseRepository) QueryCoursesByVersion(version time.Time) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.Select(&courses, `SELECT * FROM courses WHERE version = $1 ORDER BY priority, course_code`, version); err != nil {
		return nil, errors.Wrap(err, "querying courses by version")
	}
	return courses, nil
}

func (repo *courseRepository) DeleteCourse(code, program string) error {
	if _, err := repo.db.Exec(`DELETE FROM courses WHERE course_code = $1 AND program_code = $2`, code, program); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}
