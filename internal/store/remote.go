package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/pregled/internal/model"
)

// DefaultRemoteTimeout bounds every call to the user service.
const DefaultRemoteTimeout = 10 * time.Second

// maxResponseBytes caps how much of a user service response is read.
const maxResponseBytes = 8 << 20

// Observer counts upstream calls by outcome.
type Observer interface {
	ObserveUpstream(service, outcome string)
}

// Upstream call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeStatus    = "status"
	OutcomeMalformed = "malformed"
)

// ServiceError is a non-2xx answer from the user service. Message is the
// service's own "message" field when it sent one.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("user service returned status %d", e.Status)
}

// RemoteUsers talks to a REST user service:
//
//	GET    /user           -> {"data": [...]}
//	POST   /user/register  -> created user
//	PUT    /user/{id}      -> updated user
//	DELETE /user/{id}
type RemoteUsers struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Observer   Observer
}

var _ Users = (*RemoteUsers)(nil)

// NewRemoteUsers returns a client for the service rooted at baseURL. token is
// sent as a bearer credential when non-empty.
func NewRemoteUsers(baseURL, token string, timeout time.Duration) *RemoteUsers {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteUsers{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// List implements Users.
func (c *RemoteUsers) List(ctx context.Context) ([]model.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}

	raw, err := model.DecodeCollection(body, "data")
	if err != nil {
		c.observe(OutcomeMalformed)
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]model.User, 0, len(raw))
	seen := make(map[model.ID]bool, len(raw))
	for i, r := range raw {
		u, err := model.NormalizeUser(r)
		if err != nil {
			c.observe(OutcomeMalformed)
			return nil, fmt.Errorf("listing users: element %d: %w: %v", i, model.ErrMalformedResponse, err)
		}
		if u.ID == "" || seen[u.ID] {
			slog.Warn("skipping user record", "index", i, "id", u.ID)
			continue
		}
		seen[u.ID] = true
		users = append(users, u)
	}
	c.observe(OutcomeOK)
	return users, nil
}

// Create implements Users.
func (c *RemoteUsers) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = ""
	body, err := c.do(ctx, http.MethodPost, "/user/register", u)
	if err != nil {
		return model.User{}, err
	}
	return c.decodeUser(body, u)
}

// Update implements Users.
func (c *RemoteUsers) Update(ctx context.Context, u model.User) (model.User, error) {
	body, err := c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(u.ID.String()), u)
	if err != nil {
		return model.User{}, err
	}
	return c.decodeUser(body, u)
}

// Delete implements Users.
func (c *RemoteUsers) Delete(ctx context.Context, id model.ID) error {
	if _, err := c.do(ctx, http.MethodDelete, "/user/"+url.PathEscape(id.String()), nil); err != nil {
		return err
	}
	c.observe(OutcomeOK)
	return nil
}

// decodeUser reads a single user from a mutation response. Services answer
// with the bare record or with {"data": record}; an empty body echoes sent.
func (c *RemoteUsers) decodeUser(body []byte, sent model.User) (model.User, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		c.observe(OutcomeOK)
		return sent, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}

	u, err := model.NormalizeUser(body)
	if err != nil {
		c.observe(OutcomeMalformed)
		return model.User{}, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if u.ID == "" {
		u.ID = sent.ID
	}
	c.observe(OutcomeOK)
	return u, nil
}

// do sends one request and returns the body of a 2xx response. Transport
// failures and non-2xx statuses are counted here; callers count the rest.
func (c *RemoteUsers) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		c.observe(OutcomeError)
		slog.Error("user service request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("calling user service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(OutcomeError)
		return nil, fmt.Errorf("reading user service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(OutcomeStatus)
		svcErr := &ServiceError{Status: resp.StatusCode}
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			svcErr.Message = errResp.Message
		}
		slog.Error("user service returned an error", "method", method, "path", path,
			"status", resp.StatusCode, "message", svcErr.Message)
		return nil, svcErr
	}
	return body, nil
}

func (c *RemoteUsers) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *RemoteUsers) observe(outcome string) {
	if c.Observer != nil {
		c.Observer.ObserveUpstream("users", outcome)
	}
}
