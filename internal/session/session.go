// Package session issues and verifies signed session tokens. A session is a
// HS256 JWT whose key is derived from SESSION_SECRET; revoked session ids are
// remembered in Redis until the token would have expired anyway.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"innercircle/internal/cache"
	"innercircle/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer   = "innercircle"
	audience = "innercircle-web"
	keyInfo  = "innercircle session signing key v1"
)

var (
	// ErrInvalid covers malformed, forged and expired tokens.
	ErrInvalid = errors.New("invalid session")
	// ErrRevoked is returned for tokens revoked by logout.
	ErrRevoked = errors.New("session revoked")
)

// Claims is the payload of a session token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues, verifies and revokes sessions.
type Manager struct {
	key   []byte
	ttl   time.Duration
	redis *redis.Client
	now   func() time.Time
}

// NewManager derives the signing key from secret. rdb may be nil, in which
// case revocation only clears the client cookie.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &Manager{key: key, ttl: ttl, redis: rdb, now: time.Now}, nil
}

// TTL is the lifetime of newly issued sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a new session for the user.
func (m *Manager) Issue(userID uint, name, email string) (string, *models.Session, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, &models.Session{UserID: userID, Name: name, Email: email, ExpiresAt: expires}, nil
}

// Parse validates the signature and registered claims of token.
func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (c *Claims) userID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalid
	}
	return uint(id), nil
}

// Verify returns the session behind token, rejecting revoked sessions.
func (m *Manager) Verify(ctx context.Context, token string) (*models.Session, error) {
	claims, err := m.Parse(token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.userID()
	if err != nil {
		return nil, err
	}

	if m.redis != nil && claims.ID != "" {
		n, err := m.redis.Exists(ctx, cache.RevokedSessionKey(claims.ID)).Result()
		// A Redis outage must not log everyone out.
		if err == nil && n > 0 {
			return nil, ErrRevoked
		}
	}

	return &models.Session{
		UserID:    userID,
		Name:      claims.Name,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke marks token as unusable until its natural expiry. Invalid or
// already expired tokens need no revocation.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if m.redis == nil || token == "" {
		return nil
	}
	claims, err := m.Parse(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.redis.Set(ctx, cache.RevokedSessionKey(claims.ID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
