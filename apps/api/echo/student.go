package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/student"
)

type studentApi struct {
	svc     *student.Service
	courses *course.Service
	scores  *score.Service
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *student.Service,
	courses *course.Service,
	scores *score.Service,
) {
	api := studentApi{svc: svc, courses: courses, scores: scores}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/cohorts", api.queryCohortYears)
	sg.GET("/matric/:matric", api.retrieveByMatric)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

// create registers a single student and seeds one score row per course of the
// requested structure version, all slots blank.
func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	version, err := course.ParseVersion(data.Version)
	if err != nil {
		return err
	}
	courses, err := api.courses.QueryByVersion(version)
	if err != nil {
		return errors.Wrap(err, "querying courses by version")
	}
	enrolled := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		if crs.Program == data.Program {
			enrolled = append(enrolled, crs)
		}
	}
	if len(enrolled) == 0 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "version",
			Error: "no courses found for this program and version",
		})
	}

	stu, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	seeded, err := api.scores.SeedEnrollment(stu.MatricNo, enrolled, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "seeding enrollment")
	}

	return ctx.JSON(http.StatusCreated, NewStudentResponse{Student: stu, Enrollment: seeded})
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) queryCohortYears(ctx echo.Context) error {
	years, err := api.svc.CohortYears()
	if err != nil {
		return errors.Wrap(err, "querying cohort years")
	}
	if years == nil {
		years = []int{}
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) retrieveByMatric(ctx echo.Context) error {
	stu, err := api.svc.GetByMatric(ctx.Param("matric"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by matric")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	stu, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

// destroy removes the student along with their score rows.
func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type NewStudentResponse struct {
	Student    student.Student   `json:"student"`
	Enrollment core.ImportResult `json:"enrollment"`
}
