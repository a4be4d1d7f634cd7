// Package nav decides, for every requested view, whether it may be entered.
// The decision is pure: it consumes already-resolved session state and never
// performs I/O, so session.Store.CheckSession must have completed before the
// first guarded navigation for role checks to mean anything.
package nav

import (
	"github.com/apetrei/examsched/core/session"
)

// SessionInfo is the slice of session state the guard consumes; implemented
// by *session.Store and trivially fabricated in tests.
type SessionInfo interface {
	Authenticated() bool
	Role() (session.Role, bool)
}

// Route is one declared view.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	AllowedRoles []session.Role
}

func (r Route) allows(role session.Role) bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

// Result is the guard's verdict on one transition.
type Result struct {
	Allowed    bool
	RedirectTo string // target route name when not allowed
	ReturnTo   string // original path, preserved on a login redirect
}

// Evaluate runs the decision table in order, first match wins:
//
//  1. auth required, unauthenticated      -> login, keeping the target path
//  2. role restricted, resolved role outside the set -> dashboard
//  3. login while already authenticated   -> dashboard
//  4. otherwise                           -> allow
func Evaluate(route Route, sess SessionInfo) Result {
	authenticated := sess.Authenticated()
	role, resolved := sess.Role()

	switch {
	case route.RequiresAuth && !authenticated:
		return Result{RedirectTo: RouteLogin, ReturnTo: route.Path}
	case resolved && !route.allows(role):
		return Result{RedirectTo: RouteDashboard}
	case route.Name == RouteLogin && authenticated:
		return Result{RedirectTo: RouteDashboard}
	default:
		return Result{Allowed: true}
	}
}
