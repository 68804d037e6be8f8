// Package middleware provides request-scoped concerns shared by every route:
// sessions, logging, tracing, metrics and rate limiting.
package middleware

import (
	"context"
	"strings"

	"innercircle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "innercircle_session"

// SessionVerifier turns a presented token into the session it represents.
// It returns an error for unknown, expired, revoked or forged tokens.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// SessionToken extracts the session token from the cookie, falling back to a
// Bearer Authorization header for non-browser clients.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// SessionRequired rejects requests without a valid session with 401 and
// otherwise stores the viewer in Locals("userID").
func SessionRequired(v SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		session, err := v.Verify(c.UserContext(), token)
		if err != nil || session == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired session"))
		}

		c.Locals("userID", session.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, session.UserID))
		return c.Next()
	}
}

// CurrentUserID returns the authenticated viewer id.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}
