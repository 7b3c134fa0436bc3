package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// AccessTokenCookie names the short-lived session cookie.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie names the rotating long-lived cookie.
	RefreshTokenCookie = "refreshToken"
)

// CookieWriter writes and clears the two session cookies. Both are http-only
// and same-site strict; Secure is dropped only in local development.
type CookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieWriter builds a writer with the token lifetimes as cookie ages.
func NewCookieWriter(secure bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:     secure,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SetSessionCookies attaches both tokens to the response.
func (w *CookieWriter) SetSessionCookies(c *fiber.Ctx, pair *TokenPair) {
	w.setCookieToken(c, AccessTokenCookie, pair.AccessToken, w.accessTTL)
	w.setCookieToken(c, RefreshTokenCookie, pair.RefreshToken, w.refreshTTL)
}

// ReplaceAccessToken swaps only the access cookie, used by the middleware's
// silent refresh path.
func (w *CookieWriter) ReplaceAccessToken(c *fiber.Ctx, token string) {
	w.setCookieToken(c, AccessTokenCookie, token, w.accessTTL)
}

// ClearSessionCookies expires both cookies, the forced-logout path.
func (w *CookieWriter) ClearSessionCookies(c *fiber.Ctx) {
	w.cookieDel(c, AccessTokenCookie)
	w.cookieDel(c, RefreshTokenCookie)
}

func (w *CookieWriter) setCookieToken(c *fiber.Ctx, name, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (w *CookieWriter) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
