// Package examapi is the HTTP transport behind every store: one client for
// the exam API's REST contract, attaching the session's bearer credential
// and normalizing failures into core.APIError.
package examapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/apetrei/examsched/core"
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Tokens yields the current bearer credential; empty means no header.
	Tokens core.TokenSource
	Logger core.Logger
}

type Client struct {
	http    *http.Client
	baseURL string
	tokens  core.TokenSource
	log     core.Logger
}

var _ core.APIClient = (*Client)(nil)

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = core.Conf.GetDuration("requestTimeout")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = core.Conf.GetString("apiBaseUrl")
	}
	log := opts.Logger
	if log == nil {
		log = core.NopLogger{}
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tokens:  opts.Tokens,
		log:     log,
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

// PostMultipart uploads `file` as a form field named "file".
func (c *Client) PostMultipart(ctx context.Context, path, filename string, file io.Reader, out interface{}) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "creating form file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrap(err, "buffering upload")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "closing multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("examapi: request failed", req.Method, req.URL.Path, err)
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()
	c.log.Debug("examapi: request", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", req.Method, req.URL.Path)
	}
	return nil
}

// apiError lifts the server's message out of the error body. Both envelope
// spellings in the wild are handled ({"error": ...} and {"detail": ...}).
func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = payload.Detail
	}
	return core.NewAPIError(resp.StatusCode, msg)
}
