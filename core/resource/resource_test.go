package resource

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apetrei/examsched/core"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// stubAPI answers calls through optional hooks and records the paths hit.
type stubAPI struct {
	calls  []string
	get    func(path string, out interface{}) error
	post   func(path string, in, out interface{}) error
	put    func(path string, in, out interface{}) error
	delete func(path string) error
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
	if s.delete == nil {
		return nil
	}
	return s.delete(path)
}

func (s *stubAPI) PostMultipart(_ context.Context, path, _ string, _ io.Reader, _ interface{}) error {
	s.calls = append(s.calls, "POST "+path)
	return nil
}

func answer(out, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func newTestStore(api *stubAPI) *Store[record] {
	return NewStore(api, Options[record]{
		Path: "/api/things",
		ID:   func(r record) int { return r.ID },
		Messages: Messages{
			FetchAll: "could not load things",
			FetchOne: "could not load thing",
			Create:   "could not create thing",
			Update:   "could not update thing",
			Remove:   "could not delete thing",
		},
	})
}

func TestFetchAllReplacesWholesale(t *testing.T) {
	api := &stubAPI{get: func(path string, out interface{}) error {
		return answer(out, []record{{1, "a"}, {2, "b"}})
	}}
	s := newTestStore(api)
	s.SetAll([]record{{9, "stale"}})

	items, err := s.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []record{{1, "a"}, {2, "b"}}, items)
	assert.Equal(t, items, s.Items())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())
}

func TestFetchAllFailure(t *testing.T) {
	api := &stubAPI{get: func(string, interface{}) error {
		return core.NewAPIError(500, "boom")
	}}
	s := newTestStore(api)
	s.SetAll([]record{{1, "kept"}})

	_, err := s.FetchAll(context.Background())

	assert.Error(t, err)
	assert.Equal(t, []record{{1, "kept"}}, s.Items(), "a failed call leaves the collection unchanged")
	assert.Equal(t, "boom", s.Err())
	assert.False(t, s.Loading())
}

func TestFetchAllFallbackMessage(t *testing.T) {
	api := &stubAPI{get: func(string, interface{}) error {
		return core.NewAPIError(502, "")
	}}
	s := newTestStore(api)

	_, err := s.FetchAll(context.Background())

	assert.Error(t, err)
	assert.Equal(t, "could not load things", s.Err())
}

func TestFetchOneRoundTrip(t *testing.T) {
	all := []record{{1, "a"}, {2, "b"}}
	api := &stubAPI{get: func(path string, out interface{}) error {
		if path == "/api/things" {
			return answer(out, all)
		}
		return answer(out, all[1])
	}}
	s := newTestStore(api)

	_, err := s.FetchAll(context.Background())
	assert.NoError(t, err)
	got, err := s.FetchOne(context.Background(), 2)
	assert.NoError(t, err)

	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, got, cur)
	fromCache, ok := s.Find(2)
	assert.True(t, ok)
	assert.Equal(t, fromCache, cur, "current must equal the corresponding collection entry")
}

func TestCreateAppendsAfterConfirmation(t *testing.T) {
	api := &stubAPI{post: func(path string, in, out interface{}) error {
		return answer(out, record{ID: 42, Name: "created"})
	}}
	s := newTestStore(api)

	created, err := s.Create(context.Background(), map[string]string{"name": "created"})

	assert.NoError(t, err)
	assert.Equal(t, 42, created.ID, "the server assigns the identifier")
	assert.Equal(t, []record{{42, "created"}}, s.Items())
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	api := &stubAPI{post: func(string, interface{}, interface{}) error {
		return core.NewAPIError(400, "invalid")
	}}
	s := newTestStore(api)

	_, err := s.Create(context.Background(), map[string]string{})

	assert.Error(t, err)
	assert.Equal(t, 0, s.Len(), "nothing is inserted before server confirmation")
	assert.Equal(t, "invalid", s.Err())
}

func TestUpdateReplacesByID(t *testing.T) {
	api := &stubAPI{put: func(path string, in, out interface{}) error {
		assert.Equal(t, "/api/things/2", path)
		return answer(out, record{ID: 2, Name: "renamed"})
	}}
	s := newTestStore(api)
	s.SetAll([]record{{1, "a"}, {2, "b"}})

	updated, err := s.Update(context.Background(), 2, map[string]string{"name": "renamed"})

	assert.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, []record{{1, "a"}, {2, "renamed"}}, s.Items())
}

func TestUpdateUnknownIDIsIgnoredLocally(t *testing.T) {
	api := &stubAPI{put: func(path string, in, out interface{}) error {
		return answer(out, record{ID: 9, Name: "elsewhere"})
	}}
	s := newTestStore(api)
	s.SetAll([]record{{1, "a"}})

	_, err := s.Update(context.Background(), 9, map[string]string{})

	assert.NoError(t, err, "an id unknown locally is not an error")
	assert.Equal(t, []record{{1, "a"}}, s.Items())
}

func TestRemoveFiltersByID(t *testing.T) {
	api := &stubAPI{}
	s := newTestStore(api)
	s.SetAll([]record{{1, "a"}, {2, "b"}, {3, "c"}})

	err := s.Remove(context.Background(), 2)

	assert.NoError(t, err)
	assert.Equal(t, []record{{1, "a"}, {3, "c"}}, s.Items())
	assert.Equal(t, []string{"DELETE /api/things/2"}, api.calls)
}

func TestRemoveFailureLeavesCollection(t *testing.T) {
	api := &stubAPI{delete: func(string) error {
		return core.NewAPIError(403, "forbidden")
	}}
	s := newTestStore(api)
	s.SetAll([]record{{1, "a"}})

	err := s.Remove(context.Background(), 1)

	assert.Error(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "forbidden", s.Err())
}

func TestDoClearsErrorOnEntry(t *testing.T) {
	api := &stubAPI{get: func(string, interface{}) error {
		return core.NewAPIError(500, "first failure")
	}}
	s := newTestStore(api)

	_, _ = s.FetchAll(context.Background())
	assert.Equal(t, "first failure", s.Err())

	api.get = nil
	_, err := s.FetchAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, s.Err(), "a new operation clears the previous error")
}

func TestDoLoadingWindow(t *testing.T) {
	s := newTestStore(&stubAPI{})
	var during bool
	_ = s.Do("fallback", func() error {
		during = s.Loading()
		return nil
	})
	assert.True(t, during, "loading is true strictly for the duration of the operation")
	assert.False(t, s.Loading())
}
