package logsvc

import (
	"log"
	"os"

	"github.com/apetrei/examsched/core"
)

// ConsoleLogger writes to std log; the default in DEV and tests.
type ConsoleLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{
		std:   log.New(os.Stderr, "", log.LstdFlags),
		debug: core.Conf.GetBool("debug"),
	}
}

func (l ConsoleLogger) print(level, msg string, args []interface{}) {
	if len(args) == 0 {
		l.std.Printf("%s %s", level, msg)
		return
	}
	l.std.Printf("%s %s %+v", level, msg, args)
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l ConsoleLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
