package echoapi

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	reportsvc "github.com/JustynLim/SoC-SMS/services/report"
)

type reportApi struct {
	svc *reportsvc.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *reportsvc.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt)
	rg.GET("/sessions/internship", api.internshipSessions)
	rg.GET("/sessions/mentorship", api.mentorshipSessions)
	rg.POST("/internship", api.internshipList)
	rg.POST("/internship/pdf", api.internshipListPDF)
	rg.POST("/mentorship", api.mentorshipList)
	rg.POST("/mentorship/pdf", api.mentorshipListPDF)
}

// Handlers

func (api *reportApi) internshipSessions(ctx echo.Context) error {
	courseCode := ctx.QueryParam("courseCode")
	if courseCode == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "courseCode", Error: "course code is required"})
	}
	sessions, err := api.svc.InternshipSessions(courseCode)
	if err != nil {
		return errors.Wrap(err, "querying internship sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *reportApi) mentorshipSessions(ctx echo.Context) error {
	sessions, err := api.svc.MentorshipSessions()
	if err != nil {
		return errors.Wrap(err, "querying mentorship sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *reportApi) internshipList(ctx echo.Context) error {
	var data InternshipListRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InternshipListRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	rows, err := api.svc.InternshipList(data.CourseCode, data.Session)
	if err != nil {
		return errors.Wrap(err, "generating internship list")
	}
	if rows == nil {
		rows = []reportsvc.ListRow{}
	}
	return ctx.JSON(http.StatusOK, ListResponse{Rows: rows})
}

func (api *reportApi) internshipListPDF(ctx echo.Context) error {
	var data InternshipListRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InternshipListRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	path, err := api.svc.InternshipListPDF(data.CourseCode, data.Session)
	if err != nil {
		return errors.Wrap(err, "generating internship list pdf")
	}
	return ctx.Attachment(path, filepath.Base(path))
}

func (api *reportApi) mentorshipList(ctx echo.Context) error {
	var data MentorshipListRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentorshipListRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	rows, err := api.svc.MentorshipList(data.Session)
	if err != nil {
		return errors.Wrap(err, "generating mentorship list")
	}
	if rows == nil {
		rows = []reportsvc.ListRow{}
	}
	return ctx.JSON(http.StatusOK, ListResponse{Rows: rows})
}

func (api *reportApi) mentorshipListPDF(ctx echo.Context) error {
	var data MentorshipListRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MentorshipListRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	path, err := api.svc.MentorshipListPDF(data.Session)
	if err != nil {
		return errors.Wrap(err, "generating mentorship list pdf")
	}
	return ctx.Attachment(path, filepath.Base(path))
}

type (
	InternshipListRequest struct {
		CourseCode string `json:"courseCode" validate:"required"`
		Session    string `json:"session" validate:"required"`
	}

	MentorshipListRequest struct {
		Session string `json:"session" validate:"required"`
	}

	ListResponse struct {
		Rows []reportsvc.ListRow `json:"rows"`
	}
)
