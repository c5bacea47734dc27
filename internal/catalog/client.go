package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/caltechlibrary/distillery-sub000/internal/config"
)

// Typed failures surfaced by the client.
var (
	ErrNotFound    = errors.New("catalog record not found")
	ErrDuplicateID = errors.New("catalog identifier not unique")
)

// StatusError reports a non-2xx catalog response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("catalog returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, body)
}

// HTTPDoer describes the HTTP client used by the catalog service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the archival description API. Sessions are established
// lazily on first use and re-established when the server invalidates them.
type Client struct {
	baseURL      string
	username     string
	password     string
	repositoryID int
	httpClient   HTTPDoer

	mu      sync.Mutex
	session string
}

// NewClient constructs a catalog client from configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Catalog.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.Catalog.BaseURL, "/"),
		username:     cfg.Catalog.Username,
		password:     cfg.Catalog.Password,
		repositoryID: cfg.Catalog.RepositoryID,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// NewClientWithDoer constructs a catalog client with a custom HTTP doer
// (used in tests).
func NewClientWithDoer(baseURL, username, password string, repositoryID int, doer HTTPDoer) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		username:     username,
		password:     password,
		repositoryID: repositoryID,
		httpClient:   doer,
	}
}

// RepositoryID returns the configured repository, for building record URIs.
func (c *Client) RepositoryID() int {
	return c.repositoryID
}

// Login establishes a session with the catalog. Callers may invoke it
// eagerly as a reachability check; other methods call it on demand.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/users/%s/login", c.baseURL, url.PathEscape(c.username))
	form := url.Values{"password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog login: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if payload.Session == "" {
		return errors.New("catalog login returned an empty session")
	}
	c.session = payload.Session
	return nil
}

func (c *Client) ensureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == "" {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.session, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	session, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("X-ArchivesSpace-Session", session)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
		if isUniquenessViolation(raw) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, statusErr.Error())
		}
		return statusErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// isUniquenessViolation sniffs a validation error body for a uniqueness
// complaint about an identifier field.
func isUniquenessViolation(body []byte) bool {
	lowered := strings.ToLower(string(body))
	return strings.Contains(lowered, "unique") &&
		(strings.Contains(lowered, "digital_object_id") || strings.Contains(lowered, "component_id"))
}
