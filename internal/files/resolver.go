// Package files maps stored media locations to URLs a browser can fetch and
// serves local media from disk.
package files

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"innercircle/internal/config"
)

// AssetsPrefix is the route under which local media is served.
const AssetsPrefix = "/assets/"

// Resolver turns a stored location into a client URL.
type Resolver interface {
	Resolve(ctx context.Context, location string) (string, error)
}

// LocalResolver addresses media through the access-checked assets route.
type LocalResolver struct{}

// Resolve returns /assets/<location> with each path segment escaped.
func (LocalResolver) Resolve(_ context.Context, location string) (string, error) {
	u := url.URL{Path: AssetsPrefix + strings.TrimPrefix(location, "/")}
	return u.EscapedPath(), nil
}

// NewResolver builds the resolver selected by FILES_BACKEND.
func NewResolver(ctx context.Context, cfg *config.Config) (Resolver, error) {
	switch cfg.FilesBackend {
	case "", config.FilesBackendLocal:
		return LocalResolver{}, nil
	case config.FilesBackendS3:
		return NewS3Resolver(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			ForcePathStyle:  cfg.S3ForcePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			URLTTL:          cfg.S3URLTTL(),
		})
	default:
		return nil, fmt.Errorf("unknown files backend %q", cfg.FilesBackend)
	}
}
