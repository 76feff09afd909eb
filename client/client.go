// Package client talks to a contract-based endpoint over its cookie
// authenticated REST surface: session login/logout, endpoint discovery,
// schema download, and per-entity CRUD through Service.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config carries the connection settings of one endpoint instance.
type Config struct {
	// BaseURL is the instance root, e.g. https://demo.acumatica.com.
	BaseURL  string
	Username string
	Password string
	Tenant   string
	Branch   string
	Locale   string

	// EndpointName and EndpointVersion select the contract endpoint,
	// e.g. Default / 24.200.001.
	EndpointName    string
	EndpointVersion string

	// PersistentLogin keeps one session open across calls and re-logs in
	// on 401. When false every call logs in and out around the request.
	PersistentLogin bool

	// HTTPClient overrides the transport. A cookie jar is installed on it.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// APIError is a non-2xx endpoint response.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("acumatica: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("acumatica: HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsAPIError reports whether err carries an endpoint APIError.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client is a session-holding endpoint client. It is safe for concurrent
// use; the session cookie is shared through the underlying jar.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger

	mu       sync.Mutex
	loggedIn bool
}

// New validates the configuration and builds a client. No request is made
// until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("client: invalid base URL %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "client: cookie jar")
		}
		hc.Jar = jar
	}
	return &Client{cfg: cfg, http: hc, log: cfg.Logger}, nil
}

// Login opens a session. Callers using PersistentLogin rarely need this
// directly; requests log in on demand.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	creds := map[string]string{
		"name":     c.cfg.Username,
		"password": c.cfg.Password,
	}
	if c.cfg.Tenant != "" {
		creds["tenant"] = c.cfg.Tenant
	}
	if c.cfg.Branch != "" {
		creds["branch"] = c.cfg.Branch
	}
	if c.cfg.Locale != "" {
		creds["locale"] = c.cfg.Locale
	}
	if err := c.send(ctx, http.MethodPost, "/entity/auth/login", nil, creds, nil); err != nil {
		return errors.Wrap(err, "client: login")
	}
	c.loggedIn = true
	c.log.Debug().Str("tenant", c.cfg.Tenant).Msg("session opened")
	return nil
}

// Logout closes the session. Errors from an already-expired session are
// returned but leave the client usable.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logout(ctx)
}

func (c *Client) logout(ctx context.Context) error {
	c.loggedIn = false
	if err := c.send(ctx, http.MethodPost, "/entity/auth/logout", nil, nil, nil); err != nil {
		return errors.Wrap(err, "client: logout")
	}
	c.log.Debug().Msg("session closed")
	return nil
}

// Endpoint describes one contract endpoint exposed by the instance.
type Endpoint struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Endpoints lists the contract endpoints the instance exposes.
func (c *Client) Endpoints(ctx context.Context) ([]Endpoint, error) {
	var out struct {
		Endpoints []Endpoint `json:"endpoints"`
	}
	if err := c.call(ctx, http.MethodGet, "/entity", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Endpoints, nil
}

// FetchSchema downloads the raw swagger document of the configured endpoint.
func (c *Client) FetchSchema(ctx context.Context) ([]byte, error) {
	var raw json.RawMessage
	path := c.endpointPath() + "/swagger.json"
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) endpointPath() string {
	return "/entity/" + c.cfg.EndpointName + "/" + c.cfg.EndpointVersion
}

// call runs one request under the configured session policy: persistent
// sessions retry once after a 401 re-login, transient sessions wrap the
// request in a login/logout pair.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.PersistentLogin {
		if err := c.login(ctx); err != nil {
			return err
		}
		defer func() {
			if err := c.logout(ctx); err != nil {
				c.log.Warn().Err(err).Msg("logout failed")
			}
		}()
		return c.send(ctx, method, path, query, body, out)
	}

	if !c.loggedIn {
		if err := c.login(ctx); err != nil {
			return err
		}
	}
	err := c.send(ctx, method, path, query, body, out)
	if apiErr, ok := IsAPIError(err); ok && apiErr.StatusCode == http.StatusUnauthorized {
		c.log.Debug().Msg("session expired, logging in again")
		c.loggedIn = false
		if err := c.login(ctx); err != nil {
			return err
		}
		return c.send(ctx, method, path, query, body, out)
	}
	return err
}

// send issues one HTTP request and decodes the response into out. A body of
// type []byte goes out verbatim as an octet stream, anything else as JSON.
func (c *Client) send(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "application/octet-stream"
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return errors.Wrap(err, "client: encode body")
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "client: build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("request")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "client: %s %s", method, path)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "client: read %s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(payload)}
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "client: decode %s %s", method, path)
	}
	return nil
}

// errorDetail pulls the human-readable message out of an error body.
func errorDetail(payload []byte) string {
	var body struct {
		ExceptionMessage string `json:"exceptionMessage"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.ExceptionMessage != "" {
			return body.ExceptionMessage
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(payload))
}
