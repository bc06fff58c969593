package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/JustynLim/SoC-SMS/apps/api/echo"
	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/ingest"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/student"
	"github.com/JustynLim/SoC-SMS/core/user"
	logsvc "github.com/JustynLim/SoC-SMS/services/logger"
	reportsvc "github.com/JustynLim/SoC-SMS/services/report"
	"github.com/JustynLim/SoC-SMS/storage/database"
	sqlxrepos "github.com/JustynLim/SoC-SMS/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	cipher, err := student.NewCipher(conf.ICSecretKey)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up IC cipher: %v", err), err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	scrRepo := sqlxrepos.NewScoreRepository(db)

	usrSvc := user.NewService(usrRepo, conf, logger)
	scrSvc := score.NewService(scrRepo, stdRepo, logger, conf.ScoreBatchSize)
	stdSvc := student.NewService(stdRepo, scrRepo, cipher, logger)
	crsSvc := course.NewService(crsRepo, logger)
	ingSvc := ingest.NewService(stdSvc, crsSvc, scrSvc, conf, logger)
	rptSvc := reportsvc.NewService(stdSvc, scrSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			StudentSvc: stdSvc,
			CourseSvc:  crsSvc,
			ScoreSvc:   scrSvc,
			IngestSvc:  ingSvc,
			ReportSvc:  rptSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
