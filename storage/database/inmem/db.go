package inmemdb

import (
	"sync"

	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/student"
	"github.com/JustynLim/SoC-SMS/core/user"
)

// DB is an in-memory stand-in for the SQL store, used by tests and local
// development without a database server.
type (
	DB struct {
		user    *userTable
		student *studentTable
		course  *courseTable
		score   *scoreTable
	}

	userTable struct {
		table map[string]*user.User // keyed by ID
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[string]*student.Student // keyed by ID
		mutex sync.RWMutex
	}

	courseTable struct {
		table map[courseKey]*course.Course
		mutex sync.RWMutex
	}

	scoreTable struct {
		table map[scoreKey]*score.Record
		mutex sync.RWMutex
	}

	courseKey struct{ code, program string }
	scoreKey  struct{ matric, code string }
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		course:  &courseTable{table: make(map[courseKey]*course.Course)},
		score:   &scoreTable{table: make(map[scoreKey]*score.Record)},
	}
	return db, nil
}
