package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the single identity record shared by credential and federated
// accounts. PasswordHash is empty for accounts created through a federated
// provider; GoogleID is empty for password-only accounts. A record that has
// both was reconciled: a federated login landed on an email that already had
// a credential account.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name              string     `bun:"name,notnull" json:"name,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"-"`
	GoogleID          string     `bun:"google_id" json:"-"`
	ProfilePicture    string     `bun:"profile_picture" json:"profile_picture,omitempty"`
	Phone             string     `bun:"phone_number" json:"phone_number,omitempty"`
	Bio               string     `bun:"bio" json:"bio,omitempty"`
	IsVerified        bool       `bun:"is_verified" json:"is_verified"`
	VerificationToken string     `bun:"verification_token" json:"-"`
	RefreshToken      string     `bun:"refresh_token" json:"-"`
	LastLoginAt       *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsFederatedOnly reports whether the account can only sign in through the
// external provider. Password login must fail with provider guidance for
// these records instead of the generic invalid-credentials message.
func (u *User) IsFederatedOnly() bool {
	return u.PasswordHash == "" && u.GoogleID != ""
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Email uniqueness is case-insensitive across both signup paths.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PublicProfile is the caller-facing projection of a user record.
type PublicProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Public returns the profile fields safe to hand back to clients.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID.String(),
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}
