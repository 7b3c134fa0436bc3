package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind tags a token with its role in the session contract so an access
// token can never be replayed as a refresh token or vice versa, even before
// the differing signing keys are considered.
type TokenKind = string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// SessionClaims is the signed payload carried by both token kinds. Access
// tokens are self-contained: everything the middleware needs on the fast
// path lives here.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID  string    `json:"uid,omitempty"`
	Kind TokenKind `json:"tkn,omitempty"`
}

// UserID returns the user ID
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// UserUUID parses the user id claim.
func (c *SessionClaims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID())
}

// Expires returns the expiry instant, zero when absent.
func (c *SessionClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Name() string
	Email() string
}
