package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/sheet"
)

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) score.Repository {
	return &scoreRepository{db: db}
}

// scoreRow flattens a score.Record for the scores table: attempt values as
// their persisted tokens, nullable per-slot timestamps.
type scoreRow struct {
	ID          string     `db:"id"`
	MatricNo    string     `db:"matric_no"`
	CourseCode  string     `db:"course_code"`
	Attempt1    string     `db:"attempt_1"`
	Attempt2    string     `db:"attempt_2"`
	Attempt3    string     `db:"attempt_3"`
	A1UpdatedAt *time.Time `db:"a1_updated_at"`
	A2UpdatedAt *time.Time `db:"a2_updated_at"`
	A3UpdatedAt *time.Time `db:"a3_updated_at"`
}

func toRow(rec score.Record) scoreRow {
	return scoreRow{
		ID:          rec.ID,
		MatricNo:    rec.MatricNo,
		CourseCode:  rec.CourseCode,
		Attempt1:    rec.Attempts[0].Value.String(),
		Attempt2:    rec.Attempts[1].Value.String(),
		Attempt3:    rec.Attempts[2].Value.String(),
		A1UpdatedAt: rec.Attempts[0].UpdatedAt,
		A2UpdatedAt: rec.Attempts[1].UpdatedAt,
		A3UpdatedAt: rec.Attempts[2].UpdatedAt,
	}
}

func (r scoreRow) record() score.Record {
	return score.Record{
		ID:         r.ID,
		MatricNo:   r.MatricNo,
		CourseCode: r.CourseCode,
		Attempts: [score.SlotCount]score.Attempt{
			{Value: sheet.ParseValue(r.Attempt1), UpdatedAt: r.A1UpdatedAt},
			{Value: sheet.ParseValue(r.Attempt2), UpdatedAt: r.A2UpdatedAt},
			{Value: sheet.ParseValue(r.Attempt3), UpdatedAt: r.A3UpdatedAt},
		},
	}
}

const (
	insertScoreQuery = `
		INSERT INTO scores (id, matric_no, course_code, attempt_1, attempt_2, attempt_3, a1_updated_at, a2_updated_at, a3_updated_at)
		VALUES (:id, :matric_no, :course_code, :attempt_1, :attempt_2, :attempt_3, :a1_updated_at, :a2_updated_at, :a3_updated_at)`

	updateScoreQuery = `
		UPDATE scores
		SET attempt_1 = :attempt_1, attempt_2 = :attempt_2, attempt_3 = :attempt_3,
		    a1_updated_at = :a1_updated_at, a2_updated_at = :a2_updated_at, a3_updated_at = :a3_updated_at
		WHERE matric_no = :matric_no AND course_code = :course_code`
)

func (repo *scoreRepository) CreateScore(rec score.Record) (score.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, err := repo.db.NamedExec(insertScoreQuery, toRow(rec)); err != nil {
		return score.Record{}, errors.Wrap(err, "creating score")
	}
	return rec, nil
}

func (repo *scoreRepository) UpdateScore(rec score.Record) error {
	res, err := repo.db.NamedExec(updateScoreQuery, toRow(rec))
	if err != nil {
		return errors.Wrap(err, "updating score")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return score.ErrNotFound
	}
	return nil
}

func (repo *scoreRepository) GetScore(matric, courseCode string) (score.Record, error) {
	var row scoreRow
	err := repo.db.Get(&row, `SELECT * FROM scores WHERE matric_no = $1 AND course_code = $2`, matric, courseCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return score.Record{}, score.ErrNotFound
		}
		return score.Record{}, errors.Wrap(err, "getting score")
	}
	return row.record(), nil
}

func (repo *scoreRepository) QueryScoresByMatric(matric string) ([]score.Record, error) {
	return repo.query(`SELECT * FROM scores WHERE matric_no = $1 ORDER BY course_code`, matric)
}

func (repo *scoreRepository) QueryScoresByCourse(courseCode string) ([]score.Record, error) {
	return repo.query(`SELECT * FROM scores WHERE course_code = $1 ORDER BY matric_no`, courseCode)
}

func (repo *scoreRepository) QueryAllScores() ([]score.Record, error) {
	return repo.query(`SELECT * FROM scores ORDER BY matric_no, course_code`)
}

func (repo *scoreRepository) query(query string, args ...interface{}) ([]score.Record, error) {
	rows := make([]scoreRow, 0)
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying scores")
	}
	recs := make([]score.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}

func (repo *scoreRepository) DeleteScoresByMatric(matric string) error {
	if _, err := repo.db.Exec(`DELETE FROM scores WHERE matric_no = $1`, matric); err != nil {
		return errors.Wrap(err, "deleting scores")
	}
	return nil
}

// SaveScoreBatch applies one flush in a single transaction; any failure rolls
// the whole flush back.
func (repo *scoreRepository) SaveScoreBatch(creates, updates []score.Record) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning score batch")
	}

	for i, rec := range creates {
		if rec.ID == "" {
			creates[i].ID = uuid.NewString()
			rec = creates[i]
		}
		if _, err = tx.NamedExec(insertScoreQuery, toRow(rec)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting score %s %s", rec.MatricNo, rec.CourseCode)
		}
	}
	for _, rec := range updates {
		if _, err = tx.NamedExec(updateScoreQuery, toRow(rec)); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "updating score %s %s", rec.MatricNo, rec.CourseCode)
		}
	}
	return errors.Wrap(tx.Commit(), "committing score batch")
}
