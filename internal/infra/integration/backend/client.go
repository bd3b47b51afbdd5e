package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

var (
	_ usecase.Backend        = (*Client)(nil)
	_ usecase.AuthGateway    = (*Client)(nil)
	_ usecase.CaptureGateway = (*Client)(nil)
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// RequestObserver is told about every request sent to the backend.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

// Client talks to the leads backend. It never retries; a failed call is
// reported once.
type Client struct {
	http     *resty.Client
	token    string
	observer RequestObserver
	logger   *zap.Logger
}

func NewClient(cfg Config, observer RequestObserver, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:     client,
		observer: observer,
		logger:   logger.With(zap.String("component", "backend")),
	}
}

// WithToken returns a client that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) ListLeads(ctx context.Context, limit, offset int) ([]entity.Lead, error) {
	body, err := c.do(ctx, http.MethodGet, "leads.list", "/api/v1/leads", func(r *resty.Request) {
		r.SetQueryParams(page(limit, offset))
	})
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Lead](body)
}

func (c *Client) UpdateLead(ctx context.Context, id string, req usecase.UpdateLeadRequest) (*entity.Lead, error) {
	body, err := c.do(ctx, http.MethodPatch, "leads.update", "/api/v1/leads/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id).SetBody(req)
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Lead](body)
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "leads.delete", "/api/v1/leads/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	})
	return err
}

func (c *Client) ListAdmins(ctx context.Context, limit, offset int) ([]entity.Admin, error) {
	body, err := c.do(ctx, http.MethodGet, "admins.list", "/api/v1/admins", func(r *resty.Request) {
		r.SetQueryParams(page(limit, offset))
	})
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Admin](body)
}

func (c *Client) CreateAdmin(ctx context.Context, input usecase.CreateAdminInput) (*entity.Admin, error) {
	body, err := c.do(ctx, http.MethodPost, "admins.create", "/api/v1/admins", func(r *resty.Request) {
		r.SetBody(input)
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Admin](body)
}

func (c *Client) ListMessages(ctx context.Context, limit, offset int) ([]entity.Message, error) {
	body, err := c.do(ctx, http.MethodGet, "messages.list", "/api/v1/messages", func(r *resty.Request) {
		r.SetQueryParams(page(limit, offset))
	})
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Message](body)
}

func (c *Client) UpdateMessage(ctx context.Context, id string, req usecase.UpdateMessageRequest) (*entity.Message, error) {
	body, err := c.do(ctx, http.MethodPatch, "messages.update", "/api/v1/messages/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id).SetBody(req)
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[entity.Message](body)
}

func (c *Client) Login(ctx context.Context, username, password string) (usecase.LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, "auth.login", "/api/v1/auth/login", func(r *resty.Request) {
		r.SetBody(loginRequest{Username: username, Password: password})
	})
	if err != nil {
		return usecase.LoginResult{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return usecase.LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	return usecase.LoginResult{Token: resp.token(), User: resp.User}, nil
}

// Me resolves the identity behind token, not the client's own token.
func (c *Client) Me(ctx context.Context, token string) (entity.Identity, error) {
	body, err := c.WithToken(token).do(ctx, http.MethodGet, "auth.me", "/api/v1/auth/me", nil)
	if err != nil {
		return entity.Identity{}, err
	}

	var resp meResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if resp.User != nil {
		return *resp.User, nil
	}
	var identity entity.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return entity.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return identity, nil
}

// SubmitLead posts the public capture form. It is sent without credentials.
func (c *Client) SubmitLead(ctx context.Context, req usecase.CaptureRequest) error {
	_, err := c.WithToken("").do(ctx, http.MethodPost, "leads.public", "/api/v1/leads/public", func(r *resty.Request) {
		r.SetBody(req)
	})
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, configure func(*resty.Request)) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if configure != nil {
		configure(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.observe(endpoint, 0, start)
		c.logger.Warn("backend request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.observe(endpoint, resp.StatusCode(), start)

	if resp.IsError() {
		httpErr := parseHTTPError(endpoint, resp.StatusCode(), resp.Body())
		c.logger.Warn("backend returned an error",
			zap.String("endpoint", endpoint),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		return nil, httpErr
	}
	return resp.Body(), nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, time.Since(start))
	}
}

func page(limit, offset int) map[string]string {
	return map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
}

// decodeList accepts either a bare array or an object with a "value" array.
// An object without "value" is an empty page.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	raw, ok := wrapped["value"]
	if !ok {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeOne returns nil for an empty body.
func decodeOne[T any](body []byte) (*T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &item, nil
}
