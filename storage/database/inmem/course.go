package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JustynLim/SoC-SMS/core/course"
)

type courseRepository struct {
	db *courseTable
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	return courses
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.NewString()
	}
	repo.db.table[courseKey{crs.Code, crs.Program}] = &crs
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := courseKey{crs.Code, crs.Program}
	orig, ok := repo.db.table[key]
	if !ok {
		return 0, nil
	}
	crs.ID = orig.ID
	repo.db.table[key] = &crs
	return 1, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *courseRepository) GetCourse(code, program string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.table[courseKey{code, program}]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourseCodes() ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	for key := range repo.db.table {
		seen[key.code] = true
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

func (repo *courseRepository) QueryYear1Codes() ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var codes []string
	for _, crs := range repo.db.table {
		if strings.EqualFold(crs.Year, "Year 1") {
			codes = append(codes, crs.Code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (repo *courseRepository) QueryVersions() ([]time.Time, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[time.Time]bool)
	for _, crs := range repo.db.table {
		seen[crs.Version] = true
	}
	versions := make([]time.Time, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Before(versions[j]) })
	return versions, nil
}

func (repo *courseRepository) QueryCoursesByVersion(version time.Time) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var courses []course.Course
	for _, crs := range repo.db.table {
		if crs.Version.Equal(version) {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) DeleteCourse(code, program string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, courseKey{code, program})
	return nil
}
