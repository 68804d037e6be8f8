package server

import (
	"context"
	"testing"

	"innercircle/internal/config"
	"innercircle/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct{ base string }

func (r staticResolver) Resolve(_ context.Context, location string) (string, error) {
	return r.base + location + "?sig=1", nil
}

func TestServeAsset_Local(t *testing.T) {
	env := newTestEnv(t, nil)
	g := env.graph
	alice, bob, carol := g.User("alice"), g.User("bob"), g.User("carol")
	friends := g.Circle(alice, bob)
	post := g.Post(alice, testutil.Day(1), "pics", friends)
	g.Image(post, "alice/beach.jpg")
	g.Image(post, "alice/gone.jpg")
	g.Video(post, "alice/waves.mp4")

	dir := env.server.config.AssetsDir
	require.NoError(t, writeFile(dir, "alice/beach.jpg", "full"))
	require.NoError(t, writeFile(dir, "alice/beach.jpg.thumbnail.jpg", "thumb"))
	require.NoError(t, writeFile(dir, "alice/waves.mp4", "video"))
	require.NoError(t, writeFile(dir, "alice/ProfilePicture.jpg", "face"))

	bobToken := env.login(bob)
	carolToken := env.login(carol)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		body   string
	}{
		{"no session", "/assets/alice/beach.jpg", "", fiber.StatusUnauthorized, ""},
		{"member sees image", "/assets/alice/beach.jpg", bobToken, fiber.StatusOK, "full"},
		{"member sees thumbnail", "/assets/alice/beach.jpg.thumbnail.jpg", bobToken, fiber.StatusOK, "thumb"},
		{"member sees video", "/assets/alice/waves.mp4", bobToken, fiber.StatusOK, "video"},
		{"member sees profile picture", "/assets/alice/ProfilePicture.jpg", bobToken, fiber.StatusOK, "face"},
		{"outsider denied", "/assets/alice/beach.jpg", carolToken, fiber.StatusForbidden, ""},
		{"outsider denied thumbnail", "/assets/alice/beach.jpg.thumbnail.jpg", carolToken, fiber.StatusForbidden, ""},
		{"unknown media denied", "/assets/alice/other.jpg", bobToken, fiber.StatusForbidden, ""},
		{"allowed but missing on disk", "/assets/alice/gone.jpg", bobToken, fiber.StatusNotFound, ""},
		{"traversal rejected", "/assets/%2e%2e/secret.jpg", bobToken, fiber.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.get(tt.path, tt.token)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, err := readBody(resp)
				require.NoError(t, err)
				assert.Equal(t, tt.body, body)
				assert.Equal(t, "private, max-age=3600", resp.Header.Get("Cache-Control"))
			}
		})
	}
}

func TestServeAsset_S3Redirects(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.FilesBackend = config.FilesBackendS3
		cfg.S3Bucket = "media"
	}, WithResolver(staticResolver{base: "https://media.test/"}))
	g := env.graph
	alice, bob := g.User("alice"), g.User("bob")
	post := g.Post(alice, testutil.Day(1), "pics", g.Circle(alice, bob))
	g.Image(post, "alice/beach.jpg")

	resp := env.get("/assets/alice/beach.jpg.thumbnail.jpg", env.login(bob))
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://media.test/alice/beach.jpg.thumbnail.jpg?sig=1", resp.Header.Get("Location"))

	resp = env.get("/api/v1/posts", env.login(bob))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := readBody(resp)
	require.NoError(t, err)
	assert.Contains(t, body, "https://media.test/alice/beach.jpg?sig=1")
}
