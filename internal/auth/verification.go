package auth

import (
	"crypto/rand"
	"encoding/hex"

	errors "github.com/goliatone/go-errors"
)

// verificationTokenLength is the number of random bytes in a single-use
// email-verification token.
const verificationTokenLength = 32

// NewVerificationToken returns a cryptographically random single-use token.
// There is exactly one live token per unverified account; issuing a new one
// replaces the previous value, and redemption destroys it.
func NewVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}
	return hex.EncodeToString(buf), nil
}
