package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"conduit/internal/config"
	"conduit/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret   = "test-secret-key-12345678901234567890123456789012"
	testPassword = "Sup3r$ecret"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		JWTSecret:             testSecret,
		JWTTTLHours:           1,
		RequestTimeoutSeconds: 10,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestApp wires a full server over a fresh in-memory database.
func newTestApp(t *testing.T, cfg *config.Config, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s, err := NewServerWithDeps(cfg, newTestDB(t), rdb)
	require.NoError(t, err)
	return s, s.NewApp()
}

type apiResponse struct {
	Status int
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, dst), string(r.Body))
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: raw}
}

// registerUser signs up username and returns its session token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/users", "", map[string]any{
		"user": map[string]string{
			"username": username,
			"email":    username + "@example.com",
			"password": testPassword,
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var env UserEnvelope
	resp.decode(t, &env)
	require.NotEmpty(t, env.User.Token)
	return env.User.Token
}

// createArticle publishes an article and returns its slug.
func createArticle(t *testing.T, app *fiber.App, token, title string, tags ...string) string {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	resp := doRequest(t, app, http.MethodPost, "/api/articles", token, map[string]any{
		"article": map[string]any{
			"title":       title,
			"description": "About " + title,
			"body":        "Body of " + title,
			"tagList":     tags,
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	var env ArticleEnvelope
	resp.decode(t, &env)
	return env.Article.Slug
}
