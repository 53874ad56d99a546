// Package apiclient talks to the ground check API server on behalf of the
// clerk CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
)

var ErrUnauthorized = errors.New("not authenticated")

// RemoteError is a non-2xx response from the server.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
	jar  http.CookieJar
}

// New builds a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: base,
		jar:  jar,
		http: &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.base.String() }

// SessionCookie returns the current session cookie value, if any.
func (c *Client) SessionCookie() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == constants.SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie restores a session saved from an earlier login.
func (c *Client) SetSessionCookie(value string) {
	if value == "" {
		return
	}
	c.jar.SetCookies(c.base, []*http.Cookie{{Name: constants.SessionCookieName, Value: value, Path: "/"}})
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	rerr := &RemoteError{Status: resp.StatusCode}
	var body dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil {
		rerr.Code = body.Code
		rerr.Message = body.Message
	}
	return rerr
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*groundcheck.User, error) {
	var resp dto.UserResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*groundcheck.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) ListDivisions(ctx context.Context) ([]groundcheck.Division, error) {
	var resp dto.DivisionListResponse
	if err := c.do(ctx, http.MethodGet, "/api/divisions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Divisions, nil
}

// ListForemen returns the foremen of one division, or all when divisionID
// is empty.
func (c *Client) ListForemen(ctx context.Context, divisionID string) ([]groundcheck.Foreman, error) {
	path := "/api/foremen"
	if divisionID != "" {
		path += "?divisionId=" + url.QueryEscape(divisionID)
	}
	var resp dto.ForemanListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Foremen, nil
}

// CreateTask submits a task and returns it as stored by the server, with
// the server-assigned id.
func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*groundcheck.Task, error) {
	var resp dto.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/groundcheck", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Task.ID == "" {
		return nil, &RemoteError{Status: http.StatusOK, Message: "server did not return a task"}
	}
	return &resp.Task, nil
}

func (c *Client) UpdateSignature(ctx context.Context, taskID, signature string) (*groundcheck.Task, error) {
	var resp dto.TaskResponse
	path := "/api/groundcheck/" + url.PathEscape(taskID) + "/signature"
	if err := c.do(ctx, http.MethodPut, path, dto.SignatureRequest{Signature: signature}, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) ListTasks(ctx context.Context, page, limit int) (*dto.TaskListResponse, error) {
	var resp dto.TaskListResponse
	path := fmt.Sprintf("/api/groundcheck?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*groundcheck.Task, error) {
	var resp dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/api/groundcheck/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}
