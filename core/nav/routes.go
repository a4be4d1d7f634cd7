package nav

import (
	"github.com/apetrei/examsched/core/session"
)

// Declared route names.
const (
	RouteLogin         = "Login"
	RouteDashboard     = "Dashboard"
	RouteSchedule      = "Schedule"
	RouteNotifications = "Notifications"
	RouteUsers         = "UserManagement"
	RouteRooms         = "Rooms"
	RouteExport        = "ExportData"
	RouteImport        = "ImportData"
	RouteSettings      = "Settings"
	RouteProfile       = "Profile"
	RouteNotFound      = "NotFound"
)

var routes = []Route{
	{Name: RouteLogin, Path: "/login"},
	{Name: RouteDashboard, Path: "/", RequiresAuth: true},
	{Name: RouteSchedule, Path: "/schedule", RequiresAuth: true},
	{Name: RouteNotifications, Path: "/notifications", RequiresAuth: true},
	{Name: RouteUsers, Path: "/users", RequiresAuth: true,
		AllowedRoles: []session.Role{session.RoleAdmin}},
	{Name: RouteRooms, Path: "/rooms", RequiresAuth: true,
		AllowedRoles: []session.Role{session.RoleAdmin, session.RoleSecretary, session.RoleTeacher}},
	{Name: RouteExport, Path: "/export", RequiresAuth: true,
		AllowedRoles: []session.Role{session.RoleAdmin, session.RoleSecretary}},
	{Name: RouteImport, Path: "/import", RequiresAuth: true,
		AllowedRoles: []session.Role{session.RoleAdmin, session.RoleSecretary}},
	{Name: RouteSettings, Path: "/settings", RequiresAuth: true},
	{Name: RouteProfile, Path: "/profile", RequiresAuth: true},
}

// catchAll matches any undeclared path.
var catchAll = Route{Name: RouteNotFound, Path: "/:pathMatch(.*)*"}

// Routes returns the declared route table.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Find resolves a path to its declared route, falling back to the
// catch-all not-found route.
func Find(path string) Route {
	for _, r := range routes {
		if r.Path == path {
			return r
		}
	}
	return catchAll
}

// ByName resolves a route name; the catch-all answers for unknown names.
func ByName(name string) Route {
	for _, r := range routes {
		if r.Name == name {
			return r
		}
	}
	return catchAll
}
