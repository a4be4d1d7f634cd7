package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) login(assertion string) error {
	usr, err := cli.app.Session.Login(context.Background(), assertion)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", usr.FullName(), usr.Role)
	return nil
}

func (cli *commandLine) whoami() error {
	usr, ok := cli.app.Session.User()
	if !ok {
		return errNotLoggedIn
	}
	fmt.Fprintf(cli.out, "%s <%s> role=%s\n", usr.FullName(), usr.Email, usr.Role)
	return nil
}
