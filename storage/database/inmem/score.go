package inmemdb

import (
	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core/score"
)

type scoreRepository struct {
	db *scoreTable
}

func NewScoreRepository(db *DB) score.Repository {
	return &scoreRepository{db: db.score}
}

func (repo *scoreRepository) CreateScore(rec score.Record) (score.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.create(rec), nil
}

func (repo *scoreRepository) create(rec score.Record) score.Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	repo.db.table[scoreKey{rec.MatricNo, rec.CourseCode}] = &rec
	return rec
}

func (repo *scoreRepository) UpdateScore(rec score.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.update(rec)
}

func (repo *scoreRepository) update(rec score.Record) error {
	key := scoreKey{rec.MatricNo, rec.CourseCode}
	orig, ok := repo.db.table[key]
	if !ok {
		return score.ErrNotFound
	}
	rec.ID = orig.ID
	repo.db.table[key] = &rec
	return nil
}

func (repo *scoreRepository) GetScore(matric, courseCode string) (score.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[scoreKey{matric, courseCode}]; ok {
		return *rec, nil
	}
	return score.Record{}, score.ErrNotFound
}

func (repo *scoreRepository) QueryScoresByMatric(matric string) ([]score.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []score.Record
	for key, rec := range repo.db.table {
		if key.matric == matric {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (repo *scoreRepository) QueryScoresByCourse(courseCode string) ([]score.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []score.Record
	for key, rec := range repo.db.table {
		if key.code == courseCode {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (repo *scoreRepository) QueryAllScores() ([]score.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]score.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		recs = append(recs, *rec)
	}
	return recs, nil
}

func (repo *scoreRepository) DeleteScoresByMatric(matric string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for key := range repo.db.table {
		if key.matric == matric {
			delete(repo.db.table, key)
		}
	}
	return nil
}

func (repo *scoreRepository) SaveScoreBatch(creates, updates []score.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// validate updates up front so a failed flush leaves the table untouched
	for _, rec := range updates {
		if _, ok := repo.db.table[scoreKey{rec.MatricNo, rec.CourseCode}]; !ok {
			return score.ErrNotFound
		}
	}
	for _, rec := range creates {
		repo.create(rec)
	}
	for _, rec := range updates {
		if err := repo.update(rec); err != nil {
			return err
		}
	}
	return nil
}
