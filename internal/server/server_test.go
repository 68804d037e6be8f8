package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"innercircle/internal/config"
	"innercircle/internal/middleware"
	"innercircle/internal/models"
	"innercircle/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://innercircle.test"

// testEnv is a fully wired server over an in-memory graph and miniredis.
type testEnv struct {
	t      *testing.T
	graph  *testutil.Graph
	mr     *miniredis.Miniredis
	server *Server
	app    *fiber.App
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		BaseURL:         testBaseURL,
		SessionSecret:   "test-session-secret-of-sufficient-length",
		SessionTTLHours: 336,
		AllowedOrigins:  "http://localhost:5173",
		FeatureFlags:    "post_authoring=on",
		FilesBackend:    config.FilesBackendLocal,
		AssetsDir:       t.TempDir(),
	}
}

func newTestEnv(t *testing.T, configure func(*config.Config), opts ...Option) *testEnv {
	t.Helper()

	cfg := testConfig(t)
	if configure != nil {
		configure(cfg)
	}

	graph := testutil.NewGraph(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(cfg, graph.DB, rdb, opts...)
	require.NoError(t, err)

	return &testEnv{t: t, graph: graph, mr: mr, server: srv, app: srv.newApp()}
}

// login issues a session for u without going through a login flow.
func (e *testEnv) login(u *models.User) string {
	e.t.Helper()
	token, _, err := e.server.sessions.Issue(u.ID, u.Name, "")
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(req *http.Request, token string) *http.Response {
	e.t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(path, token string) *http.Response {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func readBody(resp *http.Response) (string, error) {
	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

func writeFile(dir, name, content string) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLivenessCheck(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get("/health/live", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", decode[map[string]any](t, resp)["status"])
}

func TestReadinessCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t, nil)

		resp := env.get("/health/ready", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, body["checks"])
	})

	t.Run("redis down degrades", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.mr.Close()

		resp := env.get("/health/ready", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "degraded", decode[map[string]any](t, resp)["status"])
	})

	t.Run("database down", func(t *testing.T) {
		env := newTestEnv(t, nil)
		sqlDB, err := env.graph.DB.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		resp := env.get("/health/ready", "")
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("without redis", func(t *testing.T) {
		graph := testutil.NewGraph(t)
		srv, err := NewServerWithDeps(testConfig(t), graph.DB, nil)
		require.NoError(t, err)

		resp, err := srv.newApp().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "unavailable", body["checks"].(map[string]any)["redis"])
	})
}

func TestNewServerWithDeps_RequiresSessionSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionSecret = ""

	_, err := NewServerWithDeps(cfg, testutil.NewGraphDB(t), nil)
	assert.Error(t, err)
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.graph.User("alice")

	t.Run("missing", func(t *testing.T) {
		resp := env.get("/api/v1/features", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decode[models.ErrorResponse](t, resp).Code)
	})

	t.Run("forged", func(t *testing.T) {
		resp := env.get("/api/v1/features", "not-a-token")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/features", nil)
		req.Header.Set("Authorization", "Bearer "+env.login(alice))
		resp := env.do(req, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("revoked", func(t *testing.T) {
		token := env.login(alice)
		require.NoError(t, env.server.sessions.Revoke(t.Context(), token))

		resp := env.get("/api/v1/features", token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetFeatureFlags(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.FeatureFlags = "post_authoring=off"
	})
	alice := env.graph.User("alice")

	resp := env.get("/api/v1/features", env.login(alice))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]bool{
		"post_authoring": false,
		"circle_picker":  true,
	}, decode[map[string]bool](t, resp))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get("/nope", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStaticBundle(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.StaticDir = t.TempDir()
		require.NoError(t, writeFile(cfg.StaticDir, "index.html", "<html>app</html>"))
		require.NoError(t, writeFile(cfg.StaticDir, "app.js", "console.log(1)"))
	})

	resp := env.get("/app.js", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := readBody(resp)
	assert.Equal(t, "console.log(1)", body)

	resp = env.get("/some/client/route", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ = readBody(resp)
	assert.Equal(t, "<html>app</html>", body)
}
