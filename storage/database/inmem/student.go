package inmemdb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if std.ID == "" {
		std.ID = uuid.NewString()
	}
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) UpdateStudent(std student.Student) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[std.ID]; !ok {
		return student.ErrNotFound
	}
	repo.db.table[std.ID] = &std
	return nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByMatric(matric string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.query() {
		if std.MatricNo == matric {
			return std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryMatrics() ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matrics := make([]string, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		matrics = append(matrics, std.MatricNo)
	}
	sort.Strings(matrics)
	return matrics, nil
}

func (repo *studentRepository) GetMatricByCUID(cuID int) (string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.table {
		if std.CUID == cuID {
			return std.MatricNo, nil
		}
	}
	return "", student.ErrNotFound
}

func (repo *studentRepository) QueryCohortYears() ([]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[int]bool)
	for _, std := range repo.db.table {
		parts := strings.Split(std.Cohort, "/")
		if len(parts) != 3 {
			continue
		}
		if year, err := strconv.Atoi(parts[2]); err == nil {
			seen[year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func (repo *studentRepository) DeleteStudentByID(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, id)
	return nil
}
