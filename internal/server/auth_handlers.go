package server

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"innercircle/internal/auth"
	"innercircle/internal/config"
	"innercircle/internal/middleware"
	"innercircle/internal/models"
	"innercircle/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	oauthStateCookie  = "innercircle_oauth_state"
	oauthStateTTL     = 10 * time.Minute
	defaultOAuthPath  = "/login/google/callback"
	providerTrust     = "trust"
	providerGoogle    = "google"
	unknownEmailError = "Unknown email address: %s, please contact administrator."
)

func googleCallbackPath(cfg *config.Config) string {
	if cfg.OAuthRedirectPath == "" {
		return defaultOAuthPath
	}
	return cfg.OAuthRedirectPath
}

// providers lists the enabled login providers ordered by name.
func (s *Server) providers() []auth.Provider {
	var out []auth.Provider
	if s.google != nil {
		out = append(out, auth.Provider{Name: providerGoogle, Path: "/login/google"})
	}
	if s.config.DevTrustLogin {
		out = append(out, auth.Provider{Name: providerTrust, Path: "/login/trust"})
	}
	slices.SortFunc(out, func(a, b auth.Provider) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Login handles GET /login. A single provider is entered directly, several
// are listed for the client to choose from.
func (s *Server) Login(c *fiber.Ctx) error {
	providers := s.providers()
	switch len(providers) {
	case 0:
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: "UNAVAILABLE", Message: "No login provider is configured"})
	case 1:
		return c.Redirect(providers[0].Path, fiber.StatusFound)
	default:
		return c.JSON(providers)
	}
}

// ListTrustUsers handles GET /login/trust. Development only.
func (s *Server) ListTrustUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// TrustLogin handles GET /login/trust/:id by signing in as that user
// without any credential. Development only.
func (s *Server) TrustLogin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sess, err := s.userService.SessionForID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if sess == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}
	return s.startSession(c, sess, providerTrust)
}

// GoogleLogin handles GET /login/google.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/login",
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(s.google.AuthCodeURL(state), fiber.StatusFound)
}

// GoogleCallback handles the OAuth redirect back from Google.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var loginErrors []string
	for _, key := range []string{"error", "error_description"} {
		if v := c.Query(key); v != "" {
			loginErrors = append(loginErrors, v)
		}
	}
	if len(loginErrors) > 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":  "Login failed",
			"code":   "UNAUTHORIZED",
			"errors": loginErrors,
		})
	}

	expected := c.Cookies(oauthStateCookie)
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Path:     "/login",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	if expected == "" || c.Query("state") != expected {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Login state mismatch, please try again"))
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/login/google", fiber.StatusFound)
	}

	email, err := s.google.Email(ctx, code)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "google login failed", slog.String("error", err.Error()))
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Google login failed"))
	}

	sess, err := s.userService.SessionForEmail(ctx, email)
	if err != nil {
		return respondError(c, err)
	}
	if sess == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError(fmt.Sprintf(unknownEmailError, email)))
	}
	return s.startSession(c, sess, providerGoogle)
}

// Logout handles GET /logout.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := s.sessions.Revoke(c.UserContext(), token); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revoke failed", slog.String("error", err.Error()))
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusFound)
}

// startSession issues a session for sess, sets the cookie and sends the
// browser to the application.
func (s *Server) startSession(c *fiber.Ctx, sess *models.Session, provider string) error {
	token, issued, err := s.sessions.Issue(sess.UserID, sess.Name, sess.Email)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	observability.SessionsIssued.WithLabelValues(provider).Inc()
	middleware.Logger.InfoContext(c.UserContext(), "session issued",
		slog.Any("user_id", issued.UserID), slog.String("provider", provider))

	home := s.config.BaseURL
	if home == "" {
		home = "/"
	}
	return c.Redirect(home, fiber.StatusFound)
}
