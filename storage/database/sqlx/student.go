package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO students (id, name, cohort, sem, cu_id, ic_no, mobile_no, email, bm, english, entry_q, matric_no, status, graduated_on)
		VALUES (:id, :name, :cohort, :sem, :cu_id, :ic_no, :mobile_no, :email, :bm, :english, :entry_q, :matric_no, :status, :graduated_on)`
	if _, err := repo.db.NamedExec(query, std); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(std student.Student) error {
	const query = `
		UPDATE students
		SET name = :name, cohort = :cohort, sem = :sem, cu_id = :cu_id, ic_no = :ic_no,
		    mobile_no = :mobile_no, email = :email, bm = :bm, english = :english,
		    entry_q = :entry_q, matric_no = :matric_no, status = :status, graduated_on = :graduated_on
		WHERE id = :id`
	res, err := repo.db.NamedExec(query, std)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	students := make([]student.Student, 0)
	if err := repo.db.Select(&students, `SELECT * FROM students ORDER BY name, matric_no`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	var std student.Student
	if err := repo.db.Get(&std, `SELECT * FROM students WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByMatric(matric string) (student.Student, error) {
	var std student.Student
	if err := repo.db.Get(&std, `SELECT * FROM students WHERE matric_no = $1`, matric); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by matric")
	}
	return std, nil
}

func (repo *studentRepository) QueryMatrics() ([]string, error) {
	matrics := make([]string, 0)
	if err := repo.db.Select(&matrics, `SELECT matric_no FROM students ORDER BY matric_no`); err != nil {
		return nil, errors.Wrap(err, "querying matric numbers")
	}
	return matrics, nil
}

func (repo *studentRepository) GetMatricByCUID(cuID int) (string, error) {
	var matric string
	if err := repo.db.Get(&matric, `SELECT matric_no FROM students WHERE cu_id = $1`, cuID); err != nil {
		if err == sql.ErrNoRows {
			return "", student.ErrNotFound
		}
		return "", errors.Wrap(err, "getting matric by CU ID")
	}
	return matric, nil
}

func (repo *studentRepository) QueryCohortYears() ([]int, error) {
	// cohort is stored DD/MM/YYYY
	years := make([]int, 0)
	const query = `
		SELECT DISTINCT CAST(split_part(cohort, '/', 3) AS int) AS year
		FROM students
		WHERE cohort ~ '/\d{4}$'
		ORDER BY year`
	if err := repo.db.Select(&years, query); err != nil {
		return nil, errors.Wrap(err, "querying cohort years")
	}
	return years, nil
}

func (repo *studentRepository) DeleteStudentByID(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM students WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}
