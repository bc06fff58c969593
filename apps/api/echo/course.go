package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/versions", api.queryVersions)
	cg.GET("/resolve/:code", api.resolve)
	cg.GET("/:program/:code", api.retrieve)
	cg.DELETE("/:program/:code", api.destroy, adminMiddleware())
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	crs, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	if raw := ctx.QueryParam("version"); raw != "" {
		version, err := course.ParseVersion(raw)
		if err != nil {
			return err
		}
		courses, err := api.svc.QueryByVersion(version)
		if err != nil {
			return errors.Wrap(err, "querying courses by version")
		}
		if courses == nil {
			courses = []course.Course{}
		}
		return ctx.JSON(http.StatusOK, courses)
	}

	courses, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) queryVersions(ctx echo.Context) error {
	versions, err := api.svc.Versions()
	if err != nil {
		return errors.Wrap(err, "querying course versions")
	}
	return ctx.JSON(http.StatusOK, VersionsResponse{Versions: versions})
}

// resolve canonicalizes a short code against the stored code set, the same
// matching the marksheet import uses.
func (api *courseApi) resolve(ctx echo.Context) error {
	code, err := api.svc.Resolve(ctx.Param("code"))
	if err != nil {
		if errors.Cause(err) == course.ErrUnresolvedCode {
			return core.NewValidationError(course.ErrUnresolvedCode,
				core.FieldError{Field: "code", Error: course.ErrUnresolvedCode.Error()})
		}
		return errors.Wrap(err, "resolving course code")
	}
	return ctx.JSON(http.StatusOK, ResolveResponse{Code: code})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Param("code"), ctx.Param("program"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("code"), ctx.Param("program")); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	VersionsResponse struct {
		Versions []time.Time `json:"versions"`
	}

	ResolveResponse struct {
		Code string `json:"code"`
	}
)
