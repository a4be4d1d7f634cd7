package core

import (
	"context"
	"io"
)

type (
	// APIClient is the transport seam between the stores and the exam API.
	// Implementations marshal `in` as JSON and decode the response body into
	// `out` when non-nil; failures carry the server message as an *APIError.
	APIClient interface {
		Get(ctx context.Context, path string, out interface{}) error
		Post(ctx context.Context, path string, in, out interface{}) error
		Put(ctx context.Context, path string, in, out interface{}) error
		Delete(ctx context.Context, path string) error
		// PostMultipart uploads `file` as a multipart form field named "file".
		PostMultipart(ctx context.Context, path, filename string, file io.Reader, out interface{}) error
	}

	// TokenSource yields the bearer credential to attach to outgoing
	// requests; an empty string means no session, no Authorization header.
	// The session store is the only implementation outside of tests.
	TokenSource interface {
		Token() string
	}
)
