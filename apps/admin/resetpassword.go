package main

import (
	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.GetByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	uu := user.UpdateUser{
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := uu.Validate(usr, cli.usrSvc); err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(usr.ID, uu)
	return err
}
