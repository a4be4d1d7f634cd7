package main

import (
	"context"
	"os"

	"github.com/apetrei/examsched/app"
	"github.com/apetrei/examsched/core"
	logsvc "github.com/apetrei/examsched/services/logger"
)

func main() {
	defer os.Exit(0)

	var log core.Logger
	if core.Conf.GetBool("debug") {
		log = logsvc.NewConsoleLogger()
	} else {
		log = logsvc.NewRollbarLogger(core.Conf.GetString("env"))
	}

	a := app.New(app.Options{Logger: log})
	a.Init(context.Background())

	cli := commandLine{app: a, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Error("cli: command failed", err)
		}
		os.Exit(1)
	}
}
