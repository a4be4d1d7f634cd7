package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apetrei/examsched/core/session"
)

// fakeSession fabricates guard input without a real store.
type fakeSession struct {
	authenticated bool
	role          session.Role
	resolved      bool
}

func (f fakeSession) Authenticated() bool        { return f.authenticated }
func (f fakeSession) Role() (session.Role, bool) { return f.role, f.resolved }

func anon() fakeSession { return fakeSession{} }

func as(role session.Role) fakeSession {
	return fakeSession{authenticated: true, role: role, resolved: true}
}

// tokenOnly mimics the startup window where a token is stored but the
// identity has not been resolved yet.
func tokenOnly() fakeSession { return fakeSession{authenticated: true} }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		path string
		sess fakeSession
		want Result
	}{
		{"unauthenticated to protected", "/schedule", anon(),
			Result{RedirectTo: RouteLogin, ReturnTo: "/schedule"}},
		{"unauthenticated to dashboard", "/", anon(),
			Result{RedirectTo: RouteLogin, ReturnTo: "/"}},
		{"unauthenticated to login", "/login", anon(),
			Result{Allowed: true}},
		{"unauthenticated to unknown path", "/whatever", anon(),
			Result{Allowed: true}},
		{"student to user management", "/users", as(session.RoleStudent),
			Result{RedirectTo: RouteDashboard}},
		{"teacher to import", "/import", as(session.RoleTeacher),
			Result{RedirectTo: RouteDashboard}},
		{"student to rooms", "/rooms", as(session.RoleStudent),
			Result{RedirectTo: RouteDashboard}},
		{"admin to user management", "/users", as(session.RoleAdmin),
			Result{Allowed: true}},
		{"teacher to rooms", "/rooms", as(session.RoleTeacher),
			Result{Allowed: true}},
		{"secretary to export", "/export", as(session.RoleSecretary),
			Result{Allowed: true}},
		{"authenticated to login", "/login", as(session.RoleStudent),
			Result{RedirectTo: RouteDashboard}},
		{"authenticated to unrestricted", "/notifications", as(session.RoleStudent),
			Result{Allowed: true}},
		{"unresolved identity to restricted", "/users", tokenOnly(),
			Result{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(Find(tt.path), tt.sess))
		})
	}
}

// Every declared role-restricted route admits exactly its member roles.
func TestEvaluateRoleMatrix(t *testing.T) {
	for _, route := range Routes() {
		if len(route.AllowedRoles) == 0 {
			continue
		}
		for _, role := range session.AllRoles {
			member := route.allows(role)
			res := Evaluate(route, as(role))
			if member && !res.Allowed {
				t.Errorf("%s: role %s should be allowed, got redirect to %s", route.Name, role, res.RedirectTo)
			}
			if !member && (res.Allowed || res.RedirectTo != RouteDashboard) {
				t.Errorf("%s: role %s should redirect to dashboard, got %+v", route.Name, role, res)
			}
		}
	}
}

func TestFind(t *testing.T) {
	assert.Equal(t, RouteSchedule, Find("/schedule").Name)
	assert.Equal(t, RouteNotFound, Find("/nope").Name)
	assert.Equal(t, RouteDashboard, ByName(RouteDashboard).Name)
	assert.Equal(t, RouteNotFound, ByName("Bogus").Name)
}

// The decision function is total: it reaches exactly one verdict for every
// combination of route flags and session state.
func TestEvaluateTotal(t *testing.T) {
	sessions := []fakeSession{anon(), tokenOnly(), as(session.RoleAdmin), as(session.RoleSecretary), as(session.RoleTeacher), as(session.RoleStudent)}
	routes := append(Routes(), catchAll)
	for _, route := range routes {
		for _, sess := range sessions {
			res := Evaluate(route, sess)
			if res.Allowed == (res.RedirectTo != "") {
				t.Errorf("%s/%+v: ambiguous verdict %+v", route.Name, sess, res)
			}
		}
	}
}
