// Package bootstrap connects the process to its backing services.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"innercircle/internal/cache"
	"innercircle/internal/config"
	"innercircle/internal/database"
	"innercircle/internal/models"
	"innercircle/internal/observability"
	"innercircle/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceName identifies this process in traces and metrics.
const ServiceName = "innercircle"

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with a demo graph.
	SeedDemo bool
}

// Runtime holds the connections shared by the server.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to DB and Redis, starts tracing and optionally seeds
// a demo graph. Redis is optional: without it sessions cannot be revoked
// server side and rate limits fail open.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdown}

	if opts.SeedDemo {
		if err := ensureDemoGraph(cfg, db); err != nil {
			rt.Close(context.Background())
			return nil, fmt.Errorf("failed to seed demo graph: %w", err)
		}
	}

	return rt, nil
}

// Close flushes traces and releases connections.
func (r *Runtime) Close(ctx context.Context) {
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	database.Close()
}

func ensureDemoGraph(cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return fmt.Errorf("demo seeding is only available in development, not %q", cfg.Env)
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		log.Printf("demo seeding skipped: database already has %d users", users)
		return nil
	}

	_, err := seed.Seed(db, seed.Options{NumUsers: 8, NumPosts: 60, MaxDays: 60})
	return err
}
