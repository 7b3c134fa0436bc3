package auth_test

import (
	"context"
	"time"

	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) GetByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockCredentialStore) Register(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	out, _ := args.Get(0).(*model.User)
	return out, args.Error(1)
}

func (m *MockCredentialStore) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockCredentialStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCredentialStore) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockCredentialStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCredentialStore) LinkFederatedIdentity(ctx context.Context, id uuid.UUID, providerID, picture string) error {
	args := m.Called(ctx, id, providerID, picture)
	return args.Error(0)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationEmail(to, name, token string) {
	m.Called(to, name, token)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) MintAccessToken(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) MintRefreshToken(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(token string) (*auth.SessionClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*auth.SessionClaims)
	return claims, args.Error(1)
}

func (m *MockTokenService) ValidateRefreshToken(token string) (*auth.SessionClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*auth.SessionClaims)
	return claims, args.Error(1)
}

func (m *MockTokenService) AccessTokenDuration() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockTokenService) RefreshTokenDuration() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockAssertionVerifier implements auth.AssertionVerifier
type MockAssertionVerifier struct {
	mock.Mock
}

func (m *MockAssertionVerifier) Verify(ctx context.Context, assertion string) (*auth.FederatedIdentity, error) {
	args := m.Called(ctx, assertion)
	identity, _ := args.Get(0).(*auth.FederatedIdentity)
	return identity, args.Error(1)
}
