package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/model"
)

// SessionRefresher covers the refresh path of the session middleware.
// *auth.Authenticator implements it.
type SessionRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, *model.User, error)
}

// SessionConfig wires the session middleware.
type SessionConfig struct {
	Tokens    auth.TokenService
	Refresher SessionRefresher
	Cookies   *auth.CookieWriter
	Logger    *slog.Logger

	// Optional reports only: a missing or invalid session passes through
	// without claims instead of returning 401.
	Optional bool
}

// Session authenticates a request from its session cookies.
//
// The access token is the fast path: a valid one attaches claims and moves
// on with no store round trip. When it is missing, expired, or invalid the
// refresh cookie is tried; a refresh token that passes both signature and
// stored value checks silently reissues the access cookie. A refresh token
// that fails either check ends the session: both cookies are cleared and
// the request gets 401.
func Session(cfg SessionConfig) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(auth.AccessTokenCookie)

		if accessToken != "" {
			claims, err := cfg.Tokens.ValidateAccessToken(accessToken)
			if err == nil {
				return next(c, claims)
			}
			// Absent, expired, or invalid alike fall to the refresh
			// cookie; the refresh path re-checks signature and the
			// stored record value, so a bad access token alone never
			// ends the session.
		}

		refreshToken := c.Cookies(auth.RefreshTokenCookie)
		if refreshToken == "" {
			return deny(c, cfg.Optional)
		}

		newAccess, user, err := cfg.Refresher.Refresh(c.UserContext(), refreshToken)
		if err != nil {
			if auth.IsTokenExpiredError(err) || auth.IsMalformedError(err) || isAuthDenial(err) {
				cfg.Cookies.ClearSessionCookies(c)
				return deny(c, cfg.Optional)
			}
			logger.Error("session refresh failed", "error", err)
			return err
		}

		claims, err := cfg.Tokens.ValidateAccessToken(newAccess)
		if err != nil {
			logger.Error("freshly minted access token failed validation", "error", err)
			return err
		}

		cfg.Cookies.ReplaceAccessToken(c, newAccess)
		logger.Debug("session silently refreshed", "user_id", user.ID)

		return next(c, claims)
	}
}

func next(c *fiber.Ctx, claims *auth.SessionClaims) error {
	c.SetUserContext(auth.WithClaims(c.UserContext(), claims))
	return c.Next()
}

func deny(c *fiber.Ctx, optional bool) error {
	if optional {
		return c.Next()
	}
	return auth.ErrUnauthenticated
}

func isAuthDenial(err error) bool {
	switch err {
	case auth.ErrUnauthenticated, auth.ErrInvalidAssertion:
		return true
	}
	return false
}
