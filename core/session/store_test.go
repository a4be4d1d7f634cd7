package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/apetrei/examsched/core"
)

// stubAPI records calls and answers them through optional hooks.
type stubAPI struct {
	calls []string
	get   func(path string, out interface{}) error
	post  func(path string, in, out interface{}) error
	put   func(path string, in, out interface{}) error
}

var _ core.APIClient = (*stubAPI)(nil)

func (s *stubAPI) Get(_ context.Context, path string, out interface{}) error {
	s.calls = append(s.calls, "GET "+path)
	if s.get == nil {
		return nil
	}
	return s.get(path, out)
}

func (s *stubAPI) Post(_ context.Context, path string, in, out interface{}) error {
	s.calls = append(s.calls, "POST "+path)
	if s.post == nil {
		return nil
	}
	return s.post(path, in, out)
}

func (s *stubAPI) Put(_ context.Context, path string, in, out interface{}) error {
	s.calls = append(s.calls, "PUT "+path)
	if s.put == nil {
		return nil
	}
	return s.put(path, in, out)
}

func (s *stubAPI) Delete(_ context.Context, path string) error {
	s.calls = append(s.calls, "DELETE "+path)
	return nil
}

func (s *stubAPI) PostMultipart(_ context.Context, path, _ string, _ io.Reader, _ interface{}) error {
	s.calls = append(s.calls, "POST "+path)
	return nil
}

// answer decodes a canned value into the handler's out param.
func answer(out, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func newTestStore(api *stubAPI, token string) (*Store, *MemoryStorage) {
	storage := NewMemoryStorage(token)
	s := NewStore(storage, core.NopLogger{})
	s.SetAPI(api)
	return s, storage
}

func TestCheckSessionNoToken(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestStore(api, "")
	s.CheckSession(context.Background())
	assert.Empty(t, api.calls)
	assert.False(t, s.Authenticated())
}

func TestCheckSessionExpiredToken(t *testing.T) {
	api := &stubAPI{}
	s, storage := newTestStore(api, expiringAt(t, time.Now().Add(-time.Hour)))

	s.CheckSession(context.Background())

	assert.Empty(t, api.calls, "an expired token must be detected without a request")
	assert.False(t, s.Authenticated())
	_, ok := s.User()
	assert.False(t, ok)
	stored, _ := storage.Read()
	assert.Empty(t, stored, "durable storage must be cleared")
	assert.Empty(t, s.Err(), "expiry is a lifecycle transition, not an error")
}

func TestCheckSessionResolvesIdentity(t *testing.T) {
	want := User{ID: 1, Email: "dan@usv.ro", FirstName: "Dan", LastName: "Ionescu", Role: RoleSecretary}
	api := &stubAPI{get: func(path string, out interface{}) error {
		return answer(out, want)
	}}
	s, _ := newTestStore(api, expiringAt(t, time.Now().Add(time.Hour)))

	s.CheckSession(context.Background())

	assert.Equal(t, []string{"GET /api/auth/me"}, api.calls)
	usr, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, want, usr)
	assert.True(t, s.Authenticated())
	assert.False(t, s.Loading())
}

func TestCheckSessionAlreadyResolved(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestStore(api, expiringAt(t, time.Now().Add(time.Hour)))
	s.SetUser(User{ID: 1, Role: RoleAdmin})

	s.CheckSession(context.Background())

	assert.Empty(t, api.calls)
}

func TestCheckSessionIdentityFetchFailure(t *testing.T) {
	api := &stubAPI{get: func(string, interface{}) error {
		return core.NewAPIError(401, "unknown user")
	}}
	s, storage := newTestStore(api, expiringAt(t, time.Now().Add(time.Hour)))

	s.CheckSession(context.Background())

	assert.False(t, s.Authenticated())
	_, ok := s.User()
	assert.False(t, ok)
	stored, _ := storage.Read()
	assert.Empty(t, stored)
	assert.Empty(t, s.Err(), "an invalid session is demoted to a logout, never surfaced")
}

func TestLogin(t *testing.T) {
	want := User{ID: 3, Email: "ana@usv.ro", FirstName: "Ana", LastName: "Pop", Role: RoleAdmin}
	api := &stubAPI{post: func(path string, in, out interface{}) error {
		assert.Equal(t, loginRequest{Token: "google-assertion"}, in)
		return answer(out, loginResponse{AccessToken: "issued-token", User: want})
	}}
	s, storage := newTestStore(api, "")

	usr, err := s.Login(context.Background(), "google-assertion")

	assert.NoError(t, err)
	assert.Equal(t, want, usr)
	assert.Equal(t, "issued-token", s.Token())
	stored, _ := storage.Read()
	assert.Equal(t, "issued-token", stored)
	assert.True(t, s.IsAdmin())
	assert.Empty(t, s.Err())
	assert.False(t, s.Loading())
}

func TestLoginFailure(t *testing.T) {
	api := &stubAPI{post: func(string, interface{}, interface{}) error {
		return core.NewAPIError(401, "invalid credentials")
	}}
	s, storage := newTestStore(api, "")

	_, err := s.Login(context.Background(), "bad")

	assert.Error(t, err)
	assert.Empty(t, s.Token())
	_, ok := s.User()
	assert.False(t, ok)
	stored, _ := storage.Read()
	assert.Empty(t, stored)
	assert.Equal(t, "invalid credentials", s.Err())
	assert.False(t, s.Loading())
}

func TestLoginTransportFailureFallsBack(t *testing.T) {
	api := &stubAPI{post: func(string, interface{}, interface{}) error {
		return errors.New("connection refused")
	}}
	s, _ := newTestStore(api, "")

	_, err := s.Login(context.Background(), "whatever")

	assert.Error(t, err)
	assert.Equal(t, errLoginFailed, s.Err())
}

func TestLogout(t *testing.T) {
	api := &stubAPI{}
	s, storage := newTestStore(api, expiringAt(t, time.Now().Add(time.Hour)))
	s.SetUser(User{ID: 1, Role: RoleStudent})

	s.Logout()

	assert.False(t, s.Authenticated())
	_, ok := s.User()
	assert.False(t, ok)
	stored, _ := storage.Read()
	assert.Empty(t, stored)
	assert.Empty(t, api.calls, "logout needs no server round-trip")
}

func TestUpdateProfile(t *testing.T) {
	api := &stubAPI{put: func(path string, in, out interface{}) error {
		assert.Equal(t, "/api/auth/users/7", path)
		return answer(out, User{ID: 7, Email: "c@usv.ro", FirstName: "Carmen", LastName: "Radu", Role: RoleTeacher})
	}}
	s, _ := newTestStore(api, "tok")
	s.SetUser(User{ID: 7, Email: "c@usv.ro", FirstName: "C", LastName: "Radu", Role: RoleTeacher})

	usr, err := s.UpdateProfile(context.Background(), ProfileUpdate{FirstName: "Carmen"})

	assert.NoError(t, err)
	assert.Equal(t, "Carmen", usr.FirstName)
	got, _ := s.User()
	assert.Equal(t, usr, got)
}

func TestUpdateProfileValidation(t *testing.T) {
	api := &stubAPI{}
	s, _ := newTestStore(api, "tok")
	s.SetUser(User{ID: 7, Role: RoleTeacher})

	_, err := s.UpdateProfile(context.Background(), ProfileUpdate{Password: "short"})

	assert.Error(t, err)
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Empty(t, api.calls, "invalid payloads are rejected before any request")
}
