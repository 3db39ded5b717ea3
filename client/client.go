package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"github.com/dfryer1193/blogwire/blog/application"
	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/internal/realtime"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is a stateful API client: REST calls for mutations and snapshots,
// plus a websocket subscription that keeps the ListCache current. Sessions
// ride in a cookie jar, which the websocket dial shares.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	userID string
	cache  *ListCache
	conn   *websocket.Conn
	done   chan struct{}
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
		cache:   NewListCache(""),
	}, nil
}

// Cache returns the local list mirror.
func (c *Client) Cache() *ListCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}

// UserID returns the logged-in user's ID, or empty for anonymous viewers.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Signup registers a new account and starts a session. Log in (or sign up)
// before connecting so created events are routed into the "mine" list.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}

	c.setUser(user.ID)
	return &user, nil
}

// Login starts a session for an existing account.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}

	c.setUser(user.ID)
	return &user, nil
}

// Logout ends the session. The local cache is left as-is.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// CreatePost publishes a draft.
func (c *Client) CreatePost(ctx context.Context, draft domain.Draft) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", draft, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost applies a partial update to one of the user's posts.
func (c *Client) UpdatePost(ctx context.Context, id string, upd domain.PostUpdate) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+id, upd, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes one of the user's posts and returns its last state.
func (c *Client) DeletePost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GeneratePost asks the server for an AI-generated draft about prompt.
func (c *Client) GeneratePost(ctx context.Context, prompt string) (*application.GenerateResult, error) {
	var result application.GenerateResult
	err := c.do(ctx, http.MethodPost, "/api/posts/generate", map[string]string{"prompt": prompt}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RefreshAll replaces the "all" list with a fresh snapshot.
func (c *Client) RefreshAll(ctx context.Context) error {
	var posts []*domain.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return err
	}
	c.Cache().SetAll(posts)
	return nil
}

// RefreshMine replaces the "mine" list with a fresh snapshot. Requires a
// session.
func (c *Client) RefreshMine(ctx context.Context) error {
	userID := c.UserID()
	if userID == "" {
		return fmt.Errorf("not logged in")
	}

	var posts []*domain.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/author/"+userID, nil, &posts); err != nil {
		return err
	}
	c.Cache().SetMine(posts)
	return nil
}

// Connect opens the websocket and starts merging change events into the
// cache until Close is called or the connection drops. Events may race the
// snapshot fetch in either direction; the cache's idempotent apply absorbs
// both orders.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"
	dialer := websocket.Dialer{Jar: c.http.Jar}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	c.conn = conn
	c.done = make(chan struct{})
	go c.readEvents(conn, c.cache, c.done)

	return nil
}

// Close tears down the websocket, if connected.
func (c *Client) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn, c.done = nil, nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	<-done
	return err
}

// Done is closed when the event loop exits, whether through Close or a
// dropped connection.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Client) readEvents(conn *websocket.Conn, cache *ListCache, done chan struct{}) {
	defer close(done)

	for {
		var evt realtime.ChangeEvent
		if err := conn.ReadJSON(&evt); err != nil {
			log.Debug().Err(err).Msg("Event stream closed")
			return
		}
		cache.Apply(evt)
	}
}

func (c *Client) setUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.cache = NewListCache(userID)
}

// envelope is the server's uniform response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if env.Message != "" {
			return fmt.Errorf("%s", env.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
