package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/apetrei/examsched/core"
)

// Fallback error messages, used when the server supplies none.
const (
	errLoginFailed   = "authentication failed"
	errProfileUpdate = "could not update profile"
)

type (
	loginRequest struct {
		Token string `json:"token"`
	}

	loginResponse struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
)

// Store owns the bearer token and the resolved identity. It is the only
// component that mutates the token; every other store reads it through the
// core.TokenSource interface. All state is guarded for concurrent use.
type Store struct {
	mu      sync.RWMutex
	api     core.APIClient
	storage TokenStorage
	log     core.Logger

	token   string
	user    *User
	loading bool
	err     string
}

var _ core.TokenSource = (*Store)(nil)

// NewStore builds a session store, priming the in-memory token from durable
// storage once. The identity stays unresolved until Login or CheckSession.
func NewStore(storage TokenStorage, log core.Logger) *Store {
	s := &Store{storage: storage, log: log}
	token, err := storage.Read()
	if err != nil {
		log.Warn("session: reading stored token", err)
	}
	s.token = token
	return s
}

// SetAPI wires the transport client. The client is constructed after the
// store because it reads the token back through the store; app.New owns the
// ordering.
func (s *Store) SetAPI(api core.APIClient) { s.api = api }

// Token implements core.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the resolved identity, if any.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token is held. The identity may still be
// unresolved during startup re-validation.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Role returns the current user's role once the identity is resolved.
func (s *Store) Role() (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return "", false
	}
	return s.user.Role, true
}

func (s *Store) IsAdmin() bool     { r, ok := s.Role(); return ok && r == RoleAdmin }
func (s *Store) IsSecretary() bool { r, ok := s.Role(); return ok && r == RoleSecretary }
func (s *Store) IsTeacher() bool   { r, ok := s.Role(); return ok && r == RoleTeacher }
func (s *Store) IsStudent() bool   { r, ok := s.Role(); return ok && r == RoleStudent }

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the most recently completed failed operation.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// SetUser replaces the resolved identity. Used by the user-management store
// when the acting user's own record is edited through the admin path.
func (s *Store) SetUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Login exchanges an external identity assertion for a session. On success
// both token and user are stored and the user is returned; on failure the
// server's message (or a default) is recorded and the error re-raised.
func (s *Store) Login(ctx context.Context, assertion string) (User, error) {
	s.begin()
	var resp loginResponse
	err := s.api.Post(ctx, "/api/auth/login", loginRequest{Token: assertion}, &resp)
	if err != nil {
		s.finish(err, errLoginFailed)
		return User{}, err
	}
	s.mu.Lock()
	s.setTokenLocked(resp.AccessToken)
	s.user = &resp.User
	s.mu.Unlock()
	s.finish(nil, "")
	return resp.User, nil
}

// Logout clears token and user; no server round-trip is required.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// CheckSession re-validates a token already present at process start. An
// expired token is cleared without any request; a live token with no
// resolved user triggers exactly one identity fetch, any failure of which
// is demoted to a logout. Expected to run once before the first guarded
// navigation. Session invalidity is a lifecycle transition, not an error,
// so nothing is recorded or returned.
func (s *Store) CheckSession(ctx context.Context) {
	s.mu.RLock()
	token := s.token
	resolved := s.user != nil
	s.mu.RUnlock()

	if token == "" {
		return
	}
	if tokenExpired(token) {
		s.log.Debug("session: stored token expired, logging out")
		s.Logout()
		return
	}
	if resolved {
		return
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var usr User
	err := s.api.Get(ctx, "/api/auth/me", &usr)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Debug("session: identity fetch failed, logging out", err)
		s.clearLocked()
		return
	}
	s.user = &usr
}

// UpdateProfile sends partial updates for the current user and adopts the
// server's returned representation.
func (s *Store) UpdateProfile(ctx context.Context, upd ProfileUpdate) (User, error) {
	usr, ok := s.User()
	if !ok {
		return User{}, core.NewAPIError(0, errProfileUpdate)
	}
	if err := core.ValidateStruct(upd); err != nil {
		return User{}, err
	}

	s.begin()
	var updated User
	err := s.api.Put(ctx, fmt.Sprintf("/api/auth/users/%d", usr.ID), upd, &updated)
	if err != nil {
		s.finish(err, errProfileUpdate)
		return User{}, err
	}
	s.SetUser(updated)
	s.finish(nil, "")
	return updated, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = ""
}

func (s *Store) finish(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = core.ErrorMessage(err, fallback)
	}
}

// setTokenLocked mirrors the token into durable storage; mu must be held.
func (s *Store) setTokenLocked(token string) {
	s.token = token
	var err error
	if token == "" {
		err = s.storage.Clear()
	} else {
		err = s.storage.Write(token)
	}
	if err != nil {
		s.log.Warn("session: persisting token", err)
	}
}

// clearLocked destroys the session; mu must be held.
func (s *Store) clearLocked() {
	s.setTokenLocked("")
	s.user = nil
}
