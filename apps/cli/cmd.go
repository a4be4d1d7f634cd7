package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/apetrei/examsched/app"
	"github.com/apetrei/examsched/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp           = errors.New("help provided")
	errNotLoggedIn    = errors.New("not logged in")
	errLoginCancelled = errors.New("no assertion provided")
)

type commandLine struct {
	app *app.App
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login [-token ASSERTION]   - sign in; the assertion is prompted when not given")
	fmt.Fprintln(cli.out, "  logout                     - discard the stored session")
	fmt.Fprintln(cli.out, "  whoami                     - show the signed-in user")
	fmt.Fprintln(cli.out, "  schedules                  - list exam schedules")
	fmt.Fprintln(cli.out, "  notifications [-unread]    - list notifications")
	fmt.Fprintln(cli.out, "  readall                    - mark every notification as read")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginToken := loginCmd.String("token", "", "The external identity assertion. Prompted when not given.")

	notifsCmd := flag.NewFlagSet("notifications", flag.ExitOnError)
	notifsUnread := notifsCmd.Bool("unread", false, "Only list unread notifications.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		assertion := *loginToken
		if assertion == "" {
			fmt.Fprint(cli.out, "Enter identity assertion:")
			raw, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return err
			}
			assertion = string(raw)
		}
		assertion = core.CleanString(assertion)
		if assertion == "" {
			return errLoginCancelled
		}
		return cli.login(assertion)
	case "logout":
		cli.app.Session.Logout()
		fmt.Fprintln(cli.out, "logged out")
		return nil
	case "whoami":
		return cli.whoami()
	case "schedules":
		return cli.schedules()
	case "notifications":
		if err := notifsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.notifications(*notifsUnread)
	case "readall":
		return cli.readAll()
	default:
		cli.printUsage()
		return errHelp
	}
}
