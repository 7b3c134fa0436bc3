package auth

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService mints and verifies the two session token kinds. Access tokens
// are stateless: their validity is a function of signature and expiry only.
// Refresh tokens are signed with a separate key and are additionally checked
// against the value stored on the user record by the caller; overwriting the
// stored value revokes every refresh token issued before it.
type TokenService interface {
	MintAccessToken(identity Identity) (string, error)
	MintRefreshToken(identity Identity) (string, error)
	ValidateAccessToken(token string) (*SessionClaims, error)
	ValidateRefreshToken(token string) (*SessionClaims, error)
	AccessTokenDuration() time.Duration
	RefreshTokenDuration() time.Duration
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey        []byte
	refreshSigningKey []byte
	accessDuration    time.Duration
	refreshDuration   time.Duration
	issuer            string
	logger            *slog.Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey, refreshSigningKey []byte, accessDuration, refreshDuration time.Duration, issuer string, logger *slog.Logger) TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenServiceImpl{
		signingKey:        signingKey,
		refreshSigningKey: refreshSigningKey,
		accessDuration:    accessDuration,
		refreshDuration:   refreshDuration,
		issuer:            issuer,
		logger:            logger,
	}
}

func (ts *TokenServiceImpl) AccessTokenDuration() time.Duration { return ts.accessDuration }

func (ts *TokenServiceImpl) RefreshTokenDuration() time.Duration { return ts.refreshDuration }

// MintAccessToken signs a short-lived stateless token carrying the user id.
func (ts *TokenServiceImpl) MintAccessToken(identity Identity) (string, error) {
	return ts.mint(identity, TokenKindAccess, ts.accessDuration, ts.signingKey)
}

// MintRefreshToken signs the long-lived token whose value the caller must
// persist on the user record before handing it out.
func (ts *TokenServiceImpl) MintRefreshToken(identity Identity) (string, error) {
	return ts.mint(identity, TokenKindRefresh, ts.refreshDuration, ts.refreshSigningKey)
}

func (ts *TokenServiceImpl) mint(identity Identity, kind TokenKind, ttl time.Duration, key []byte) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UID:  identity.ID(),
		Kind: kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// ValidateAccessToken parses and validates an access token string.
func (ts *TokenServiceImpl) ValidateAccessToken(raw string) (*SessionClaims, error) {
	return ts.validate(raw, TokenKindAccess, ts.signingKey)
}

// ValidateRefreshToken checks signature and expiry only; matching the stored
// record value is the caller's responsibility.
func (ts *TokenServiceImpl) ValidateRefreshToken(raw string) (*SessionClaims, error) {
	return ts.validate(raw, TokenKindRefresh, ts.refreshSigningKey)
}

func (ts *TokenServiceImpl) validate(raw string, kind TokenKind, key []byte) (*SessionClaims, error) {
	parserOptions := []jwt.ParserOption{}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token service could not decode or validate claims")
		return nil, ErrTokenMalformed
	}

	if claims.Kind != kind {
		ts.logger.Error("token kind mismatch", "want", kind, "got", claims.Kind)
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
