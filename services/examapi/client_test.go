package examapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apetrei/examsched/core"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type echoPayload struct {
	Name string `json:"name"`
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Tokens:  staticToken(token),
	})
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, "tok-123", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("{}"))
	})

	err := c.Get(context.Background(), "/api/things", nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestNoBearerWhenTokenEmpty(t *testing.T) {
	var got http.Header
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("{}"))
	})

	err := c.Get(context.Background(), "/api/things", nil)

	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"), "no header at all without a token")
}

func TestPostEncodesAndDecodes(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in echoPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.Name += "!"
		json.NewEncoder(w).Encode(in)
	})

	var out echoPayload
	err := c.Post(context.Background(), "/api/things", echoPayload{Name: "hello"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hello!", out.Name)
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"error key", http.StatusBadRequest, `{"error": "invalid date"}`, "invalid date"},
		{"detail key", http.StatusForbidden, `{"detail": "not allowed"}`, "not allowed"},
		{"blank body", http.StatusBadGateway, ``, ""},
		{"non-json body", http.StatusInternalServerError, `<html>boom</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.Get(context.Background(), "/api/things", nil)

			require.Error(t, err)
			var apiErr *core.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expected, apiErr.Message)
		})
	}
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second})
	srv.Close() // connection refused from here on

	err := c.Get(context.Background(), "/api/things", nil)

	require.Error(t, err)
	var apiErr *core.APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "fallback", core.ErrorMessage(err, "fallback"))
}

func TestDelete(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/things/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.Delete(context.Background(), "/api/things/3"))
}

func TestPostMultipart(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "users.csv", header.Filename)
		json.NewEncoder(w).Encode(map[string]int{"created": 4})
	})

	var out struct {
		Created int `json:"created"`
	}
	err := c.PostMultipart(context.Background(), "/api/import", "users.csv",
		strings.NewReader("email\nana@usv.ro\n"), &out)

	require.NoError(t, err)
	assert.Equal(t, 4, out.Created)
}
