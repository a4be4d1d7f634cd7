package session

// Role is the closed set of access levels known to the exam API.
type Role string

const (
	RoleAdmin     Role = "ADM" // administrator
	RoleSecretary Role = "SEC" // secretariat
	RoleTeacher   Role = "CD"  // cadru didactic (teaching staff)
	RoleStudent   Role = "STD" // student
)

var AllRoles = []Role{RoleAdmin, RoleSecretary, RoleTeacher, RoleStudent}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User is the resolved identity behind a session token.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"is_active"`
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u User) IsSecretary() bool { return u.Role == RoleSecretary }
func (u User) IsTeacher() bool   { return u.Role == RoleTeacher }
func (u User) IsStudent() bool   { return u.Role == RoleStudent }

// ProfileUpdate carries partial changes to the acting user's own record.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
}
