package auth

import (
	stderrors "errors"
	"net/http"
	"strings"

	errors "github.com/goliatone/go-errors"
)

// Credential failures share one message so callers cannot tell an unknown
// email apart from a wrong password.
var ErrInvalidCredentials = errors.New("Invalid email or password", errors.CategoryAuth).
	WithCode(http.StatusBadRequest).
	WithTextCode("INVALID_CREDENTIALS")

// ErrFederatedAccount guides password logins against provider-only records.
var ErrFederatedAccount = errors.New("This email is registered via Google. Please log in using Google.", errors.CategoryAuth).
	WithCode(http.StatusBadRequest).
	WithTextCode("FEDERATED_ACCOUNT")

// ErrEmailNotVerified is returned when credentials match but the account is
// still pending verification. Raising it re-triggers verification delivery.
var ErrEmailNotVerified = errors.New("Email not verified. A verification email has been sent to you.", errors.CategoryAuth).
	WithCode(http.StatusForbidden).
	WithTextCode("EMAIL_NOT_VERIFIED")

// ErrDuplicateEmail rejects signups against an email that already has a
// record, regardless of which path created it.
var ErrDuplicateEmail = errors.New("User already exists", errors.CategoryConflict).
	WithCode(http.StatusConflict).
	WithTextCode("DUPLICATE_EMAIL")

// ErrVerificationNotFound covers unknown, already redeemed, and never issued
// verification tokens alike.
var ErrVerificationNotFound = errors.New("Invalid or expired verification token", errors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode("VERIFICATION_NOT_FOUND")

// ErrAlreadyVerified is the idempotence guard on verification redemption.
var ErrAlreadyVerified = errors.New("Email is already verified", errors.CategoryValidation).
	WithCode(http.StatusBadRequest).
	WithTextCode("ALREADY_VERIFIED")

// ErrUnauthenticated is the session middleware's terminal failure.
var ErrUnauthenticated = errors.New("Authentication required", errors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// ErrInvalidAssertion is returned when a provider identity assertion fails
// signature or audience checks. Deliberately opaque.
var ErrInvalidAssertion = errors.New("Authentication failed", errors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode("INVALID_ASSERTION")

// ErrTokenExpired marks a well-formed token past its lifetime.
var ErrTokenExpired = errors.New("Authentication token expired", errors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers every other token parse or signature failure.
var ErrTokenMalformed = errors.New("Invalid authentication token", errors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(http.StatusBadRequest).
	WithTextCode("EMPTY_VALUE")

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch marker; it is
// mapped to ErrInvalidCredentials before leaving the package.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(http.StatusBadRequest).
	WithTextCode("HASH_MISMATCH")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
