package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/student"
)

type scoreApi struct {
	svc      *score.Service
	students *student.Service
}

func registerScoreAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *score.Service, students *student.Service) {
	api := scoreApi{svc: svc, students: students}

	sg := g.Group("/scores", jwt)
	sg.GET("", api.query)
	sg.GET("/matric/:matric", api.queryByMatric)
	sg.GET("/course/:code", api.queryByCourse)
	sg.GET("/cohort/:year", api.queryByCohort)
	sg.GET("/:matric/:code", api.retrieve)
	sg.DELETE("/matric/:matric", api.destroyByMatric, adminMiddleware())
}

// Handlers

func (api *scoreApi) query(ctx echo.Context) error {
	records, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying scores")
	}
	if records == nil {
		records = []score.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *scoreApi) queryByMatric(ctx echo.Context) error {
	records, err := api.svc.QueryByMatric(ctx.Param("matric"))
	if err != nil {
		return errors.Wrap(err, "querying scores by matric")
	}
	if records == nil {
		records = []score.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *scoreApi) queryByCourse(ctx echo.Context) error {
	records, err := api.svc.QueryByCourse(ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "querying scores by course")
	}
	if records == nil {
		records = []score.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

// queryByCohort expands one intake year into its students' score records.
func (api *scoreApi) queryByCohort(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "not a valid cohort year"})
	}

	students, err := api.students.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	out := []CohortScores{}
	for _, std := range students {
		if std.CohortYear() != year {
			continue
		}
		records, err := api.svc.QueryByMatric(std.MatricNo)
		if err != nil {
			return errors.Wrap(err, "querying scores by matric")
		}
		if records == nil {
			records = []score.Record{}
		}
		out = append(out, CohortScores{MatricNo: std.MatricNo, Name: std.Name, Records: records})
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *scoreApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByKey(ctx.Param("matric"), ctx.Param("code"))
	if err != nil {
		if errors.Cause(err) == score.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding score")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *scoreApi) destroyByMatric(ctx echo.Context) error {
	if err := api.svc.DeleteScoresByMatric(ctx.Param("matric")); err != nil {
		return errors.Wrap(err, "deleting scores")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CohortScores is one student's score set inside a cohort expansion.
type CohortScores struct {
	MatricNo string         `json:"matric_no"`
	Name     string         `json:"name"`
	Records  []score.Record `json:"records"`
}
