package main

import (
	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	role := user.RoleStaff
	if isAdmin {
		role = user.RoleAdmin
	}

	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		nu := user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            role,
		}
		if err := nu.Validate(cli.usrSvc); err != nil {
			return err
		}
		_, err = cli.usrSvc.Create(nu)
		return err
	}

	active := true
	uu := user.UpdateUser{
		Name:            name,
		Role:            role,
		IsActive:        &active,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := uu.Validate(usr, cli.usrSvc); err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(usr.ID, uu)
	return err
}
