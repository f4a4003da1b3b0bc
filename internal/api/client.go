// Package api is the client for the OrbitFund REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/logger"
)

// Client talks to the backend. It implements draft.Transport.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries uint
	initial    time.Duration
	sanitizer  *bluemonday.Policy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets how many attempts idempotent reads make and the first
// backoff interval.
func WithRetries(attempts uint, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = attempts
		c.initial = initial
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		maxRetries: 4,
		initial:    500 * time.Millisecond,
		sanitizer:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ draft.Transport = (*Client)(nil)

// CreateSubmission posts a new mission.
func (c *Client) CreateSubmission(ctx context.Context, token string, p *draft.Payload) (string, error) {
	return c.sendPayload(ctx, http.MethodPost, "/submission", token, p)
}

// UpdateMission saves an edited mission, including its deletion queues.
func (c *Client) UpdateMission(ctx context.Context, token, id string, p *draft.Payload) (string, error) {
	return c.sendPayload(ctx, http.MethodPut, "/my-missions/"+url.PathEscape(id), token, p)
}

// sendPayload streams the multipart body. Submissions are not retried; the
// user retries from the wizard with the same staged files.
func (c *Client) sendPayload(ctx context.Context, method, path, token string, p *draft.Payload) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	writeErr := make(chan error, 1)
	go func() {
		err := p.Write(mw)
		writeErr <- err
		_ = pw.CloseWithError(err)
	}()
	defer func() { _ = pr.Close() }()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, pr)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	logger.Debug("%s %s (%d fields, %d files)", method, path, len(p.Fields), len(p.Files))
	resp, err := c.http.Do(req)
	if err != nil {
		if fileErr := bodyError(writeErr); fileErr != nil {
			return "", fileErr
		}
		return "", &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the server may answer before reading a body that failed midway
		if fileErr := bodyError(writeErr); fileErr != nil {
			return "", fileErr
		}
		apiErr := c.decodeError(resp.StatusCode, body)
		logger.Warn("%s %s failed: %d %s", method, path, resp.StatusCode, apiErr.Display())
		return "", apiErr
	}

	var ok struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &ok); err != nil {
		// a 2xx with a non-JSON body still counts as success
		return "", nil
	}
	return c.clean(ok.Message), nil
}

// bodyError reports a failure of the body writer, if it already finished with
// one. The writer publishes its error before closing the pipe, so any request
// failure caused by that close finds it here. A closed pipe means the
// transport gave up first and is not the writer's fault.
func bodyError(writeErr <-chan error) error {
	select {
	case err := <-writeErr:
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			logger.Warn("Streaming submission body failed: %v", err)
			return &FileError{Err: err}
		}
	default:
	}
	return nil
}

// GetMission fetches a mission owned by the caller. Network errors and 5xx
// responses are retried with exponential backoff; 4xx responses are not.
func (c *Client) GetMission(ctx context.Context, token, id string) (*draft.MissionRecord, error) {
	path := "/my-missions/" + url.PathEscape(id)

	op := func() (*draft.MissionRecord, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("building request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &NetworkError{Op: "GET " + path, Err: err}
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &NetworkError{Op: "GET " + path, Err: err}
		}
		if resp.StatusCode >= 500 {
			return nil, c.decodeError(resp.StatusCode, body)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, backoff.Permanent(c.decodeError(resp.StatusCode, body))
		}

		var rec draft.MissionRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decoding mission %s: %w", id, err))
		}
		return &rec, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	rec, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxRetries),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Debug("GET %s failed, retrying in %s: %v", path, d, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	data, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encoding login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "POST /users/login", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "POST /users/login", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.decodeError(resp.StatusCode, body)
	}

	var res LoginResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	if res.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	if res.Username == "" {
		res.Username = username
	}
	return &res, nil
}
