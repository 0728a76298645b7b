// Package authclient is the auth boundary consumed by UI code: login,
// signup, logout and session refresh against the platform API, plus a
// short-lived local cache of the authenticated user so the UI can render
// immediately and reconfirm in the background.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akorchemkin/sitebase/pkg/security/jwt"
)

// User mirrors the sanitized account view of the API.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// APIError carries the server's error message verbatim for the UI layer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client is the auth facade. Safe for concurrent use.
type Client struct {
	baseURL string
	httpDo  *http.Client
	cache   *fileCache

	mu    sync.Mutex
	user  *User
	token string
}

// New builds a Client. cachePath is where the last authenticated user is
// persisted; a missing or corrupt cache file just means "logged out".
func New(baseURL, cachePath string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  &http.Client{Timeout: 10 * time.Second},
		cache:   &fileCache{path: cachePath},
	}
	st, err := c.cache.load()
	if err != nil {
		_ = c.cache.clear()
		return c
	}
	c.user, c.token = st.User, st.Token
	return c
}

// CachedUser returns the locally cached user for optimistic first render.
// The value must not be trusted beyond that: call Refresh to reconfirm.
func (c *Client) CachedUser() (User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

// Login authenticates and replaces the local cache on success. On any
// failure the local state resets to logged out and the server's message is
// returned verbatim.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Signup registers a new account; cache semantics match Login.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) (User, error) {
	return c.authenticate(ctx, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, payload map[string]string) (User, error) {
	user, token, err := c.post(ctx, path, payload)
	if err != nil {
		c.reset()
		return User{}, err
	}
	c.store(user, token)
	return user, nil
}

// Refresh reconfirms the session against the server. ok=false with a nil
// error means the server no longer recognizes the session; the cache is
// cleared. A transport or server fault keeps the cache and returns the
// error, since the server said nothing about the session.
func (c *Client) Refresh(ctx context.Context) (User, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return User{}, false, err
	}

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return User{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.reset()
		return User{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, false, apiError(resp)
	}

	var envelope struct {
		User User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return User{}, false, fmt.Errorf("decode response: %w", err)
	}
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	c.store(envelope.User, token)
	return envelope.User, true, nil
}

// Logout clears local state unconditionally, then tells the server. A
// failing server call never leaves stale local state behind.
func (c *Client) Logout(ctx context.Context) error {
	req, reqErr := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	c.reset()
	if reqErr != nil {
		return reqErr
	}

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (User, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return User{}, "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return User{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return User{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return User{}, "", apiError(resp)
	}

	var envelope struct {
		User User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return User{}, "", fmt.Errorf("decode response: %w", err)
	}

	var token string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == jwt.CookieName {
			token = cookie.Value
		}
	}
	return envelope.User, token, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: jwt.CookieName, Value: token})
	}
	return req, nil
}

func (c *Client) store(user User, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &user
	c.token = token
	_ = c.cache.save(cacheState{User: &user, Token: token})
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.token = ""
	_ = c.cache.clear()
}

func apiError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Message == "" {
		body.Message = fmt.Sprintf("http %d", resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}
