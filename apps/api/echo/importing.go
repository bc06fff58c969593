package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/ingest"
)

type importApi struct {
	svc  *ingest.Service
	conf *core.Config
}

// registerImportAPI exposes the workbook ingestion endpoints. Uploads land in
// conf.UploadDir; CSV artifacts and missing-matric reports in conf.ReportDir.
func registerImportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *ingest.Service, conf *core.Config) {
	api := importApi{svc: svc, conf: conf}

	ig := g.Group("/imports", jwt, adminMiddleware())
	ig.POST("/datasheet", api.importDatasheet)
	ig.POST("/course-structure", api.importCourseStructure)
	ig.POST("/marksheet", api.importMarksheet)
}

// Handlers

func (api *importApi) importDatasheet(ctx echo.Context) error {
	sheetName := ctx.FormValue("sheet")
	if sheetName == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "sheet", Error: "sheet name is required"})
	}

	path, err := api.saveUpload(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.ImportDatasheet(path, sheetName, api.conf.ReportDir)
	if err != nil {
		if errors.Cause(err) == ingest.ErrUnknownSheet {
			return core.NewValidationError(nil, core.FieldError{Field: "sheet", Error: err.Error()})
		}
		return errors.Wrap(err, "importing datasheet")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *importApi) importCourseStructure(ctx echo.Context) error {
	program := ctx.FormValue("program")
	if program == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "program", Error: "program code is required"})
	}
	version := ctx.FormValue("version")
	legacy := ctx.FormValue("legacy") == "true"

	path, err := api.saveUpload(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.ImportCourseStructure(path, program, version, api.conf.ReportDir, legacy)
	if err != nil {
		return errors.Wrap(err, "importing course structure")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *importApi) importMarksheet(ctx echo.Context) error {
	path, err := api.saveUpload(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.ImportMarksheet(path)
	if err != nil {
		return errors.Wrap(err, "importing marksheet")
	}
	return ctx.JSON(http.StatusOK, res)
}

// saveUpload copies the "file" form part into conf.UploadDir and returns the
// stored path.
func (api *importApi) saveUpload(ctx echo.Context) (string, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: "file", Error: "an .xlsx file is required"})
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer func(src multipart.File) { _ = src.Close() }(src)

	if err = os.MkdirAll(api.conf.UploadDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}
	path := filepath.Join(api.conf.UploadDir, filepath.Base(fh.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer func(dst *os.File) { _ = dst.Close() }(dst)

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "saving upload")
	}
	return path, nil
}
