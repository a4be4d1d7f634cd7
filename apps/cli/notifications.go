package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) notifications(unreadOnly bool) error {
	if !cli.app.Session.Authenticated() {
		return errNotLoggedIn
	}
	items, err := cli.app.Notifications.FetchAll(context.Background())
	if err != nil {
		return err
	}
	shown := 0
	for _, n := range items {
		if unreadOnly && n.Read {
			continue
		}
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(cli.out, "%s #%d [%s] %s\n", marker, n.ID, n.Type, n.Title)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(cli.out, "no notifications")
		return nil
	}
	fmt.Fprintf(cli.out, "%d unread\n", cli.app.Notifications.UnreadCount())
	return nil
}

func (cli *commandLine) readAll() error {
	if !cli.app.Session.Authenticated() {
		return errNotLoggedIn
	}
	if err := cli.app.Notifications.MarkAllAsRead(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "all notifications marked as read")
	return nil
}
