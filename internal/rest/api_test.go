package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/blogwire/blog/application"
	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/blog/persistence"
	"github.com/dfryer1193/blogwire/internal/auth"
	"github.com/dfryer1193/blogwire/internal/realtime"
	"github.com/dfryer1193/blogwire/shared/db/sqlite"
	"github.com/gin-gonic/gin"
)

type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	return g.response, g.err
}

func setupServer(t *testing.T, gen application.DraftGenerator, persistGenerated bool) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig(filepath.Join(t.TempDir(), "api.db")))
	if err := database.Connect(); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	conn := database.DB()
	authSvc := auth.NewService(persistence.NewUserRepository(conn), persistence.NewSessionRepository(conn))

	hub := realtime.NewHub()
	postSvc := application.NewPostService(
		persistence.NewPostRepository(conn),
		gen,
		realtime.NewBroadcaster(hub),
		persistGenerated,
	)

	router := gin.New()
	NewApi(router, NewPostHandler(postSvc, nil), NewAuthHandler(authSvc), authSvc, hub, "")

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// newSessionClient returns an http client with a cookie jar holding a fresh
// login for the named user, plus the user's ID.
func newSessionClient(t *testing.T, srv *httptest.Server, name string) (*http.Client, string) {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to build cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	body, status := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "hunter22",
	})
	if status != http.StatusOK {
		t.Fatalf("Signup returned %d: %s", status, body)
	}

	var envelope struct {
		Data domain.User `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode signup response: %v", err)
	}

	return client, envelope.Data.ID
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload any) ([]byte, int) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return buf.Bytes(), resp.StatusCode
}

func decodePost(t *testing.T, body []byte) domain.Post {
	t.Helper()

	var envelope struct {
		Data domain.Post `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode post envelope %s: %v", body, err)
	}
	return envelope.Data
}

func TestCreatePostRequiresAuth(t *testing.T) {
	srv := setupServer(t, nil, false)

	_, status := doJSON(t, http.DefaultClient, http.MethodPost, srv.URL+"/api/posts", map[string]string{
		"heading": "Hello",
		"body":    "World",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", status)
	}
}

func TestCreateAndFetchPost(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, authorID := newSessionClient(t, srv, "author")

	body, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]string{
		"heading": "Hello",
		"body":    "World",
	})
	if status != http.StatusOK {
		t.Fatalf("Create returned %d: %s", status, body)
	}
	created := decodePost(t, body)
	if created.AuthorID != authorID {
		t.Errorf("AuthorID = %q, want %q", created.AuthorID, authorID)
	}

	// Single-post reads are public.
	body, status = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/posts/"+created.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("Get returned %d: %s", status, body)
	}
	if got := decodePost(t, body); got.Heading != "Hello" {
		t.Errorf("Heading = %q", got.Heading)
	}
}

func TestCreatePost_MissingField(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, _ := newSessionClient(t, srv, "author")

	body, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]string{
		"heading": "Hello",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", status, body)
	}
}

func TestListPostsIsPublicAndNewestFirst(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, _ := newSessionClient(t, srv, "author")

	for _, heading := range []string{"first", "second"} {
		_, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]string{
			"heading": heading,
			"body":    "content",
		})
		if status != http.StatusOK {
			t.Fatalf("Create %q returned %d", heading, status)
		}
	}

	body, status := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/posts", nil)
	if status != http.StatusOK {
		t.Fatalf("List returned %d", status)
	}

	var envelope struct {
		Data []domain.Post `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Heading != "second" {
		t.Errorf("Expected newest first, got %q", envelope.Data[0].Heading)
	}
}

func TestUpdateByNonOwnerIs404(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, _ := newSessionClient(t, srv, "author")
	intruder, _ := newSessionClient(t, srv, "intruder")

	body, _ := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]string{
		"heading": "Hello",
		"body":    "World",
	})
	created := decodePost(t, body)

	respBody, status := doJSON(t, intruder, http.MethodPut, srv.URL+"/api/posts/"+created.ID, map[string]string{
		"heading": "hijacked",
	})
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 for non-owner update, got %d: %s", status, respBody)
	}

	// The response must not leak the post's content.
	if bytes.Contains(respBody, []byte("Hello")) || bytes.Contains(respBody, []byte("World")) {
		t.Errorf("Non-owner response leaked post content: %s", respBody)
	}
}

func TestDeletePost(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, _ := newSessionClient(t, srv, "author")

	body, _ := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts", map[string]string{
		"heading": "Hello",
		"body":    "World",
	})
	created := decodePost(t, body)

	respBody, status := doJSON(t, author, http.MethodDelete, srv.URL+"/api/posts/"+created.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("Delete returned %d: %s", status, respBody)
	}
	if got := decodePost(t, respBody); got.ID != created.ID {
		t.Errorf("Deleted post ID = %q, want %q", got.ID, created.ID)
	}

	_, status = doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/posts/"+created.ID, nil)
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
}

func TestGetPostsByAuthorRequiresAuth(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, authorID := newSessionClient(t, srv, "author")

	_, status := doJSON(t, http.DefaultClient, http.MethodGet, srv.URL+"/api/posts/author/"+authorID, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("Expected 401 without session, got %d", status)
	}

	_, status = doJSON(t, author, http.MethodGet, srv.URL+"/api/posts/author/"+authorID, nil)
	if status != http.StatusOK {
		t.Errorf("Expected 200 with session, got %d", status)
	}
}

func TestGenerateReturnsDraftForReview(t *testing.T) {
	gen := &stubGenerator{response: `{"title": "Generated", "content": "Body."}`}
	srv := setupServer(t, gen, false)
	author, _ := newSessionClient(t, srv, "author")

	body, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts/generate", map[string]string{
		"prompt": "gophers",
	})
	if status != http.StatusOK {
		t.Fatalf("Generate returned %d: %s", status, body)
	}

	var envelope struct {
		Data application.GenerateResult `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode generate response: %v", err)
	}
	if envelope.Data.Persisted {
		t.Error("Expected review mode to not persist")
	}
	if envelope.Data.Draft.Heading != "Generated" {
		t.Errorf("Draft heading = %q", envelope.Data.Draft.Heading)
	}
}

func TestGenerateUpstreamFailureIs502(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("model offline")}
	srv := setupServer(t, gen, false)
	author, _ := newSessionClient(t, srv, "author")

	body, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/posts/generate", map[string]string{
		"prompt": "gophers",
	})
	if status != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d: %s", status, body)
	}
	if bytes.Contains(body, []byte("model offline")) {
		t.Error("Upstream error details must not leak to the caller")
	}
}

func TestAuthCheck(t *testing.T) {
	srv := setupServer(t, nil, false)
	author, authorID := newSessionClient(t, srv, "author")

	body, status := doJSON(t, author, http.MethodGet, srv.URL+"/api/auth/check", nil)
	if status != http.StatusOK {
		t.Fatalf("Check returned %d", status)
	}

	var envelope struct {
		Data domain.User `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("Failed to decode check response: %v", err)
	}
	if envelope.Data.ID != authorID {
		t.Errorf("Check returned user %q, want %q", envelope.Data.ID, authorID)
	}

	// Logout invalidates the session.
	if _, status := doJSON(t, author, http.MethodPost, srv.URL+"/api/auth/logout", nil); status != http.StatusOK {
		t.Fatalf("Logout returned %d", status)
	}
	if _, status := doJSON(t, author, http.MethodGet, srv.URL+"/api/auth/check", nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", status)
	}
}
