// Package gateway talks to the remote reminder CRUD API and its change feed.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reminders-lite/internal/auth"
	"reminders-lite/internal/model"
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Options struct {
	BaseURL string
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("gateway base URL is required")
	}
	u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported gateway scheme %q", u.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: u, http: hc}, nil
}

type loginResponse struct {
	Auth    bool   `json:"auth"`
	UserID  int64  `json:"userId"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges credentials for a session. A rejected login yields
// auth.ErrInvalidLogin.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	var resp loginResponse
	status, err := c.do(ctx, http.MethodPost, "login", model.Session{}, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		if status == http.StatusInternalServerError && resp.Message == auth.ErrInvalidLogin.Error() {
			return model.Session{}, auth.ErrInvalidLogin
		}
		return model.Session{}, err
	}
	if !resp.Auth || resp.UserID <= 0 || resp.Token == "" {
		return model.Session{}, auth.ErrInvalidLogin
	}
	return model.Session{UserID: resp.UserID, Token: resp.Token}, nil
}

func (c *Client) List(ctx context.Context, sess model.Session) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if _, err := c.do(ctx, http.MethodGet, "reminders", sess, nil, &reminders); err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	return reminders, nil
}

func (c *Client) Get(ctx context.Context, sess model.Session, id int64) (model.Reminder, error) {
	var r model.Reminder
	_, err := c.do(ctx, http.MethodGet, reminderPath(id), sess, nil, &r)
	return r, err
}

func (c *Client) Create(ctx context.Context, sess model.Session, r model.Reminder) (model.Reminder, error) {
	r.ID = 0
	var created model.Reminder
	_, err := c.do(ctx, http.MethodPost, "reminders", sess, r, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, sess model.Session, r model.Reminder) (model.Reminder, error) {
	var updated model.Reminder
	_, err := c.do(ctx, http.MethodPut, reminderPath(r.ID), sess, r, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, sess model.Session, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, reminderPath(id), sess, nil, nil)
	return err
}

func reminderPath(id int64) string {
	return "reminders/" + strconv.FormatInt(id, 10)
}

// do sends one request. A 404 maps to ErrNotFound; other failures become a
// *TransportError. On a non-2xx answer the body is still decoded into out
// when possible so callers can inspect error payloads.
func (c *Client) do(ctx context.Context, method, path string, sess model.Session, body, out any) (int, error) {
	op := strings.ToLower(method) + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Valid() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		req.Header.Set("User-ID", strconv.FormatInt(sess.UserID, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out != nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, out)
		}
		return resp.StatusCode, &TransportError{Op: op, Status: resp.StatusCode}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp.StatusCode, nil
}
