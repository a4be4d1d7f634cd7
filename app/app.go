// Package app composes the session store, the domain stores and the
// navigation guard into one process-wide state container.
package app

import (
	"context"
	"sync"

	"github.com/apetrei/examsched/core"
	"github.com/apetrei/examsched/core/nav"
	"github.com/apetrei/examsched/core/notification"
	"github.com/apetrei/examsched/core/schedule"
	"github.com/apetrei/examsched/core/session"
	"github.com/apetrei/examsched/core/user"
	"github.com/apetrei/examsched/services/examapi"
	"github.com/apetrei/examsched/storage/tokenfile"
)

type Options struct {
	Logger  core.Logger
	Storage session.TokenStorage
	API     core.APIClient
}

// App is the root aggregator. The top-level loading/error pair is for
// cross-cutting UI feedback only; every store keeps its own.
type App struct {
	Log           core.Logger
	Session       *session.Store
	Schedules     *schedule.Store
	Users         *user.Store
	Notifications *notification.Store

	mu      sync.RWMutex
	loading bool
	err     string
}

// New wires the container. Construction order matters: the session store is
// primed from durable storage first, the transport client reads the token
// back through it, and the session store then uses that client for its own
// requests.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = core.NopLogger{}
	}
	storage := opts.Storage
	if storage == nil {
		storage = tokenfile.New(core.Conf.GetString("tokenFile"))
	}

	sess := session.NewStore(storage, log)
	api := opts.API
	if api == nil {
		api = examapi.NewClient(examapi.Options{Tokens: sess, Logger: log})
	}
	sess.SetAPI(api)

	return &App{
		Log:           log,
		Session:       sess,
		Schedules:     schedule.NewStore(api),
		Users:         user.NewStore(api, sess),
		Notifications: notification.NewStore(api),
	}
}

// Init re-validates any stored session. It must complete before the first
// guarded navigation, otherwise role checks run against an unresolved user.
func (a *App) Init(ctx context.Context) {
	a.Session.CheckSession(ctx)
}

// Navigate resolves a path against the route table and runs the guard.
func (a *App) Navigate(path string) nav.Result {
	return nav.Evaluate(nav.Find(path), a.Session)
}

func (a *App) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *App) SetLoading(loading bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = loading
}

func (a *App) Err() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *App) SetErr(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = msg
}

func (a *App) ClearErr() {
	a.SetErr("")
}

// Busy reports whether any store has an operation in flight; convenient for
// a global spinner.
func (a *App) Busy() bool {
	return a.Loading() ||
		a.Session.Loading() ||
		a.Schedules.Loading() ||
		a.Users.Loading() ||
		a.Notifications.Loading()
}
