package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) schedules() error {
	if !cli.app.Session.Authenticated() {
		return errNotLoggedIn
	}
	items, err := cli.app.Schedules.FetchAll(context.Background())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cli.out, "no schedules")
		return nil
	}
	for _, sch := range items {
		room := "-"
		if sch.Room != nil {
			room = sch.Room.Name
		}
		fmt.Fprintf(cli.out, "#%d %s %s %s-%s room=%s group=%s [%s]\n",
			sch.ID, sch.Subject.Acronym, sch.Date, sch.StartTime, sch.EndTime,
			room, sch.Group.Name, sch.Status)
	}
	return nil
}
