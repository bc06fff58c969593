package main

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/user"
	inmemdb "github.com/JustynLim/SoC-SMS/storage/database/inmem"
)

var usrSvc *user.Service

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	conf := &core.Config{
		SecretKey:                 "secret",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)
	usrSvc = user.NewService(inmemdb.NewUserRepository(db), conf, stdLogger{std: logger})

	return &commandLine{
		conf:   conf,
		usrSvc: usrSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"adduser", "-name", "Jane Staff"}, wantErr: errHelp},
		{name: "flags but no password", args: []string{"adduser", "-name", "Jane Staff", "-email", "jane@test.cd"}, wantErr: errHelp},
		{name: "create staff", args: []string{"adduser", "-name", "Jane Staff", "-email", "jane@test.cd"}, extra: extra{pwd: "G0od#Pass123"}},
		{name: "create admin", args: []string{"adduser", "-name", "Root Admin", "-email", "root@test.cd", "-admin"}, extra: extra{pwd: "G0od#Pass123"}},
		{name: "update existing", args: []string{"adduser", "-name", "Jane S.", "-email", "jane@test.cd", "-admin"}, extra: extra{pwd: "0ther#Pass456"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}

	usr, err := usrSvc.GetByEmail("jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if usr.Name != "Jane S." {
		t.Errorf("name = %q, want %q", usr.Name, "Jane S.")
	}
	if usr.Role != user.RoleAdmin {
		t.Errorf("role = %q, want %q", usr.Role, user.RoleAdmin)
	}
	if !usr.IsActive {
		t.Error("user should be active")
	}
	if err := usr.CheckPassword("0ther#Pass456"); err != nil {
		t.Error("failed to update password")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr, err := usrSvc.Create(user.NewUser{
		Name:            "Awe Some",
		Email:           "awe@test.cd",
		Password:        "G0od#Pass123",
		PasswordConfirm: "G0od#Pass123",
		Role:            user.RoleStaff,
	})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "0ther#Pass456"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "0ther#Pass456"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrSvc.GetByID(usr.ID)
				if err != nil {
					t.Fatalf("GetByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
