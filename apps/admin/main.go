package main

import (
	"log"
	"os"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/course"
	"github.com/JustynLim/SoC-SMS/core/ingest"
	"github.com/JustynLim/SoC-SMS/core/score"
	"github.com/JustynLim/SoC-SMS/core/student"
	"github.com/JustynLim/SoC-SMS/core/user"
	"github.com/JustynLim/SoC-SMS/storage/database"
	sqlxrepos "github.com/JustynLim/SoC-SMS/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	errAndDie(database.Migrate(db))

	cipher, err := student.NewCipher(conf.ICSecretKey)
	errAndDie(err)

	usrRepo := sqlxrepos.NewUserRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	scrRepo := sqlxrepos.NewScoreRepository(db)

	stdLog := stdLogger{std: logger}
	usrSvc := user.NewService(usrRepo, conf, stdLog)
	scrSvc := score.NewService(scrRepo, stdRepo, stdLog, conf.ScoreBatchSize)
	stdSvc := student.NewService(stdRepo, scrRepo, cipher, stdLog)
	crsSvc := course.NewService(crsRepo, stdLog)
	ingSvc := ingest.NewService(stdSvc, crsSvc, scrSvc, conf, stdLog)

	// start CLI
	cli := commandLine{
		conf:   conf,
		usrSvc: usrSvc,
		ingSvc: ingSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

// stdLogger adapts the standard logger to core.Logger for service wiring.
type stdLogger struct {
	std *log.Logger
}

func (l stdLogger) Enable(bool)                           {}
func (l stdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.print("FATAL", msg, args); os.Exit(1) }

func (l stdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}
