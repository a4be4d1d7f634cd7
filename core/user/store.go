// Package user is the admin-side user-management store. Records are the
// same identities the session store resolves, managed through the
// /api/auth/admin endpoints.
package user

import (
	"context"
	"io"

	"github.com/volatiletech/null/v8"

	"github.com/apetrei/examsched/core"
	"github.com/apetrei/examsched/core/resource"
	"github.com/apetrei/examsched/core/session"
)

// Fallback error messages, used when the server supplies none.
const (
	errFetchAll = "could not load users"
	errFetchOne = "could not load user"
	errCreate   = "could not create user"
	errUpdate   = "could not update user"
	errRemove   = "could not delete user"
	errImport   = "could not import users"
)

type (
	// Input creates a user; the password may be left for the user to set on
	// first login.
	Input struct {
		Email     string       `json:"email" validate:"required,email"`
		FirstName string       `json:"firstName" validate:"required,min=1,max=100"`
		LastName  string       `json:"lastName" validate:"required,min=1,max=100"`
		Role      session.Role `json:"role" validate:"required,oneof=ADM SEC CD STD"`
		Password  string       `json:"password,omitempty" validate:"omitempty,min=8"`
	}

	// UpdateInput carries partial changes to an existing user.
	UpdateInput struct {
		FirstName null.String `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
		LastName  null.String `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
		Role      null.String `json:"role,omitempty" validate:"omitempty,oneof=ADM SEC CD STD"`
		Password  null.String `json:"password,omitempty" validate:"omitempty,min=8"`
	}

	// ImportResult is the server's summary of a batch import.
	ImportResult struct {
		Created int      `json:"created"`
		Updated int      `json:"updated"`
		Errors  []string `json:"errors"`
	}
)

// Store manages the user collection. It keeps the session store's resolved
// identity consistent when the acting user edits their own record through
// the admin path.
type Store struct {
	*resource.Store[session.User]
	sess *session.Store
}

func NewStore(api core.APIClient, sess *session.Store) *Store {
	return &Store{
		Store: resource.NewStore(api, resource.Options[session.User]{
			Path: "/api/auth/admin/users",
			ID:   func(u session.User) int { return u.ID },
			Messages: resource.Messages{
				FetchAll: errFetchAll,
				FetchOne: errFetchOne,
				Create:   errCreate,
				Update:   errUpdate,
				Remove:   errRemove,
			},
		}),
		sess: sess,
	}
}

// Create validates the payload locally before submitting it.
func (s *Store) Create(ctx context.Context, in Input) (session.User, error) {
	if err := core.ValidateStruct(in); err != nil {
		return session.User{}, err
	}
	return s.Store.Create(ctx, in)
}

// Update edits a user. When the edited record is the currently
// authenticated user's own, the session store adopts the server's returned
// representation so the acting user's profile stays consistent.
func (s *Store) Update(ctx context.Context, id int, upd UpdateInput) (session.User, error) {
	if err := core.ValidateStruct(upd); err != nil {
		return session.User{}, err
	}
	updated, err := s.Store.Update(ctx, id, upd)
	if err != nil {
		return session.User{}, err
	}
	if self, ok := s.sess.User(); ok && self.ID == updated.ID {
		s.sess.SetUser(updated)
	}
	return updated, nil
}

// Import uploads a batch file, then re-fetches the whole collection rather
// than merging the import response locally.
func (s *Store) Import(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var result ImportResult
	err := s.Do(errImport, func() error {
		return s.Client().PostMultipart(ctx, "/api/auth/admin/users/import", filename, file, &result)
	})
	if err != nil {
		return ImportResult{}, err
	}
	if _, err := s.FetchAll(ctx); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// ByRole filters the cached collection by role.
func (s *Store) ByRole(role session.Role) []session.User {
	var out []session.User
	for _, u := range s.Items() {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// Counts tallies cached users per role.
func (s *Store) Counts() map[session.Role]int {
	counts := make(map[session.Role]int, len(session.AllRoles))
	for _, r := range session.AllRoles {
		counts[r] = 0
	}
	for _, u := range s.Items() {
		if _, ok := counts[u.Role]; ok {
			counts[u.Role]++
		}
	}
	return counts
}
