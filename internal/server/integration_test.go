package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mountRoutes wires the route surface without the metrics middleware, which
// registers global Prometheus collectors and cannot be set up twice.
func mountRoutes(s *Server) *fiber.App {
	app := fiber.New()
	app.Get("/", s.ListPosts)
	app.Get("/post/:id", s.GetPost)
	app.Post("/register", s.Register)
	app.Post("/login", s.Login)
	app.Get("/logout", s.Logout)
	app.Get("/me", s.AuthRequired(), s.Me)
	app.Post("/post/:id/comments", s.AuthRequired(), s.AddComment)
	app.Post("/new-post", s.AuthRequired(), s.AdminOnly(), s.CreatePost)
	app.Put("/edit-post/:id", s.AuthRequired(), s.AdminOnly(), s.EditPost)
	app.Get("/delete-post/:id", s.AuthRequired(), s.AdminOnly(), s.DeletePost)
	app.Delete("/users/:id", s.AuthRequired(), s.AdminOnly(), s.DeleteUser)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	_ = resp.Body.Close()
	return resp, body
}

// TestBlogLifecycle runs the whole story: the first registrant becomes the
// admin, a second registrant does not, only the admin can manage posts, and
// deleting a post takes its comments with it.
func TestBlogLifecycle(t *testing.T) {
	s, db := newTestServer(t)
	app := mountRoutes(s)

	// First registration: becomes the admin.
	resp, body := doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "password-a",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	adminToken := body["token"].(string)
	adminUser := body["user"].(map[string]any)
	assert.Equal(t, true, adminUser["is_admin"])

	// Second registration: a regular member.
	resp, body = doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Bob", "email": "b@x.com", "password": "password-b",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	memberToken := body["token"].(string)
	memberUser := body["user"].(map[string]any)
	assert.Equal(t, false, memberUser["is_admin"])

	// Duplicate email is rejected and creates no row.
	resp, _ = doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Imposter", "email": "a@x.com", "password": "password-c",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(2), userCount)

	// The member cannot create posts.
	resp, _ = doJSON(t, app, http.MethodPost, "/new-post", memberToken, map[string]string{
		"title": "T", "subtitle": "S", "body": "B",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Wrong password cannot log in.
	resp, _ = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The admin logs in and creates a post.
	resp, body = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"email": "a@x.com", "password": "password-a",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken = body["token"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/new-post", adminToken, map[string]string{
		"title": "T", "subtitle": "S", "body": "B", "image_url": "img",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := uint(body["id"].(float64))

	// The post shows up in the public list.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	var posts []models.Post
	_ = json.NewDecoder(listResp.Body).Decode(&posts)
	_ = listResp.Body.Close()
	require.Len(t, posts, 1)
	assert.Equal(t, "T", posts[0].Title)

	// The member comments on it.
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/post/%d/comments", postID), memberToken, map[string]string{
		"body": "Great read",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The member cannot delete the post.
	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/delete-post/%d", postID), memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin deletes it; the comments go too.
	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/delete-post/%d", postID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var postCount, commentCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(t, int64(0), postCount)
	assert.Equal(t, int64(0), commentCount)
}

func TestDeleteUserCascades(t *testing.T) {
	s, db := newTestServer(t)
	app := mountRoutes(s)

	resp, body := doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "password-a",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	adminToken := body["token"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Bob", "email": "b@x.com", "password": "password-b",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	memberID := uint(body["user"].(map[string]any)["id"].(float64))
	memberToken := body["token"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/new-post", adminToken, map[string]string{
		"title": "T", "subtitle": "S", "body": "B",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := uint(body["id"].(float64))

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/post/%d/comments", postID), memberToken, map[string]string{
		"body": "I was here",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Members cannot delete users.
	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", memberID), memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin deletes the member; their comments go with them.
	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", memberID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var userCount, commentCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(0), commentCount)
}

// TestLogoutRevokesSession verifies that with Redis available, a logged-out
// token stops working even though it has not expired.
func TestLogoutRevokesSession(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	prev := cache.Client
	cache.Client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() {
		_ = cache.Client.Close()
		cache.Client = prev
	}()

	s, _ := newTestServer(t)
	app := mountRoutes(s)

	resp, body := doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "password-a",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["token"].(string)

	// Token works before logout.
	resp, _ = doJSON(t, app, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Same token is now rejected.
	resp, _ = doJSON(t, app, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
