package student

import (
	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core"
)

type (
	Repository interface {
		CreateStudent(std Student) (Student, error)
		UpdateStudent(std Student) error
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		GetStudentByMatric(matric string) (Student, error)
		QueryMatrics() ([]string, error)
		GetMatricByCUID(cuID int) (string, error)
		QueryCohortYears() ([]int, error)
		DeleteStudentByID(id string) error
	}

	// ScoreDeleter cascades a student deletion onto their score rows.
	ScoreDeleter interface {
		DeleteScoresByMatric(matric string) error
	}

	Service struct {
		repo   Repository
		scores ScoreDeleter
		cipher *Cipher
		log    core.Logger
	}
)

func NewService(repo Repository, scores ScoreDeleter, cipher *Cipher, log core.Logger) *Service {
	return &Service{repo: repo, scores: scores, cipher: cipher, log: log}
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	if _, err := svc.repo.GetStudentByMatric(ns.MatricNo); err == nil {
		return Student{}, core.NewValidationError(ErrMatricExists, core.FieldError{Field: "matric_no", Error: ErrMatricExists.Error()})
	}
	std := ns.student()
	std.ID = uuid.NewString()
	enc, err := svc.cipher.Encrypt(std.IC)
	if err != nil {
		return Student{}, err
	}
	std.IC = enc
	created, err := svc.repo.CreateStudent(std)
	if err != nil {
		return Student{}, err
	}
	created.IC = svc.cipher.Decrypt(created.IC)
	return created, nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].IC = svc.cipher.Decrypt(students[i].IC)
	}
	return students, nil
}

func (svc *Service) GetByID(id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	std.IC = svc.cipher.Decrypt(std.IC)
	return std, nil
}

func (svc *Service) GetByMatric(matric string) (Student, error) {
	std, err := svc.repo.GetStudentByMatric(core.CleanString(matric))
	if err != nil {
		return Student{}, err
	}
	std.IC = svc.cipher.Decrypt(std.IC)
	return std, nil
}

func (svc *Service) MatricByCUID(cuID int) (string, error) {
	return svc.repo.GetMatricByCUID(cuID)
}

func (svc *Service) Matrics() (map[string]bool, error) {
	matrics, err := svc.repo.QueryMatrics()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(matrics))
	for _, m := range matrics {
		set[m] = true
	}
	return set, nil
}

func (svc *Service) CohortYears() ([]int, error) {
	return svc.repo.QueryCohortYears()
}

func (svc *Service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	orig.IC = svc.cipher.Decrypt(orig.IC)
	std := us.apply(orig)
	enc, err := svc.cipher.Encrypt(std.IC)
	if err != nil {
		return Student{}, err
	}
	plain := std.IC
	std.IC = enc
	if err := svc.repo.UpdateStudent(std); err != nil {
		return Student{}, err
	}
	std.IC = plain
	return std, nil
}

// Delete removes a student and cascades onto their score rows.
func (svc *Service) Delete(id string) error {
	std, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return err
	}
	if err := svc.scores.DeleteScoresByMatric(std.MatricNo); err != nil {
		return err
	}
	return svc.repo.DeleteStudentByID(id)
}

// ImportRecords reconciles parsed entity records against the students table,
// keyed by matric number. Unknown keys insert, changed rows update and
// identical rows are skipped, so re-running the same sheet is a no-op.
func (svc *Service) ImportRecords(records []Student) (core.ImportResult, error) {
	var res core.ImportResult
	for _, rec := range records {
		existing, err := svc.repo.GetStudentByMatric(rec.MatricNo)
		if err == ErrNotFound {
			rec.ID = uuid.NewString()
			enc, encErr := svc.cipher.Encrypt(rec.IC)
			if encErr != nil {
				res.Errored++
				continue
			}
			rec.IC = enc
			if _, err := svc.repo.CreateStudent(rec); err != nil {
				svc.log.Warn("student import: insert failed", map[string]interface{}{"matric": rec.MatricNo, "error": err.Error()})
				res.Errored++
				continue
			}
			res.Inserted++
			continue
		}
		if err != nil {
			res.Errored++
			continue
		}

		decrypted := existing
		decrypted.IC = svc.cipher.Decrypt(existing.IC)
		if !decrypted.Changed(rec) {
			res.Skipped++
			continue
		}

		rec.ID = existing.ID
		enc, encErr := svc.cipher.Encrypt(rec.IC)
		if encErr != nil {
			res.Errored++
			continue
		}
		rec.IC = enc
		if err := svc.repo.UpdateStudent(rec); err != nil {
			svc.log.Warn("student import: update failed", map[string]interface{}{"matric": rec.MatricNo, "error": err.Error()})
			res.Errored++
			continue
		}
		res.Updated++
	}
	return res, nil
}
