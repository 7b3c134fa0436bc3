package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	errors "github.com/goliatone/go-errors"
)

const googleJWKSetURL = "https://www.googleapis.com/oauth2/v3/certs"

// FederatedIdentity is the profile extracted from a verified provider
// assertion.
type FederatedIdentity struct {
	ProviderID string
	Email      string
	Name       string
	Picture    string
}

type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleVerifier validates Google-issued ID tokens against the provider's
// published JWK set. The key set refreshes in the background; an unknown kid
// triggers an immediate refetch so key rotations do not strand logins.
type GoogleVerifier struct {
	clientID string
	jwks     *keyfunc.JWKS
	logger   *slog.Logger
}

// NewGoogleVerifier fetches the Google JWK set and returns a verifier bound
// to the given OAuth client id, which every assertion's audience must match.
func NewGoogleVerifier(clientID string, logger *slog.Logger) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required", errors.CategoryBadInput)
	}
	if logger == nil {
		logger = slog.Default()
	}

	jwks, err := keyfunc.Get(googleJWKSetURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error("google JWK set background refresh failed", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to fetch google JWK set")
	}

	return &GoogleVerifier{
		clientID: clientID,
		jwks:     jwks,
		logger:   logger,
	}, nil
}

// Verify implements AssertionVerifier. It fails closed: signature, audience,
// issuer, expiry, and the provider's own email_verified flag must all pass.
func (v *GoogleVerifier) Verify(_ context.Context, assertion string) (*FederatedIdentity, error) {
	token, err := jwt.ParseWithClaims(assertion, &googleClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		v.logger.Error("google assertion parse failed", "error", err)
		return nil, ErrInvalidAssertion
	}

	claims, ok := token.Claims.(*googleClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAssertion
	}

	if claims.Issuer != "accounts.google.com" && claims.Issuer != "https://accounts.google.com" {
		v.logger.Error("google assertion has unexpected issuer", "iss", claims.Issuer)
		return nil, ErrInvalidAssertion
	}

	if claims.Email == "" || !claims.EmailVerified {
		return nil, ErrInvalidAssertion
	}

	return &FederatedIdentity{
		ProviderID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Picture:    claims.Picture,
	}, nil
}

// Close stops the background JWK refresh goroutine.
func (v *GoogleVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

var _ AssertionVerifier = (*GoogleVerifier)(nil)
