package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/model"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStoreNotFound = goerrors.New("record not found", goerrors.CategoryNotFound)

func newAuthenticator(store *MockCredentialStore, tokens *MockTokenService, mailer *MockMailer) *auth.Authenticator {
	return auth.NewAuthenticator(store, tokens, mailer, nil)
}

func verifiedUser(t *testing.T, password string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &model.User{
		ID:           uuid.New(),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: hash,
		IsVerified:   true,
	}
}

func TestSignupCreatesUnverifiedAccount(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)
	mailer := new(MockMailer)

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, errStoreNotFound)
	store.On("Register", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			assert.Equal(t, "ada@example.com", u.Email)
			assert.False(t, u.IsVerified)
			assert.NotEmpty(t, u.PasswordHash)
			assert.NotEmpty(t, u.VerificationToken)
			u.ID = uuid.New()
		}).
		Return(&model.User{ID: uuid.New(), Email: "ada@example.com"}, nil)
	mailer.On("SendVerificationEmail", "ada@example.com", mock.Anything, mock.Anything).Return()

	svc := newAuthenticator(store, tokens, mailer)

	user, err := svc.Signup(context.Background(), auth.SignupInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	store.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)
	mailer := new(MockMailer)

	store.On("GetByEmail", mock.Anything, "ada@example.com").
		Return(&model.User{ID: uuid.New(), Email: "ada@example.com"}, nil)

	svc := newAuthenticator(store, tokens, mailer)

	_, err := svc.Signup(context.Background(), auth.SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	mailer.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignupMapsUniqueViolationToDuplicate(t *testing.T) {
	store := new(MockCredentialStore)
	mailer := new(MockMailer)

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, errStoreNotFound)
	store.On("Register", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(nil, goerrors.New("UNIQUE constraint failed: users.email", goerrors.CategoryInternal))

	svc := newAuthenticator(store, new(MockTokenService), mailer)

	_, err := svc.Signup(context.Background(), auth.SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	mailer.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignupStoreFailureIsInternal(t *testing.T) {
	store := new(MockCredentialStore)
	mailer := new(MockMailer)

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, errStoreNotFound)
	store.On("Register", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(nil, goerrors.New("disk I/O error", goerrors.CategoryInternal))

	svc := newAuthenticator(store, new(MockTokenService), mailer)

	_, err := svc.Signup(context.Background(), auth.SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrDuplicateEmail)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryInternal, rich.Category)
	mailer.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignupRejectsEmptyPassword(t *testing.T) {
	store := new(MockCredentialStore)
	mailer := new(MockMailer)

	store.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errStoreNotFound)

	svc := newAuthenticator(store, new(MockTokenService), mailer)

	_, err := svc.Signup(context.Background(), auth.SignupInput{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	store.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLoginIssuesPairAndRotatesRefresh(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)
	mailer := new(MockMailer)

	user := verifiedUser(t, "correct horse battery")

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	tokens.On("MintAccessToken", mock.Anything).Return("access-token", nil)
	tokens.On("MintRefreshToken", mock.Anything).Return("refresh-token", nil)
	store.On("StoreRefreshToken", mock.Anything, user.ID, "refresh-token").Return(nil)

	svc := newAuthenticator(store, tokens, mailer)

	pair, got, err := svc.Login(context.Background(), "Ada@Example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "access-token", pair.AccessToken)
	assert.Equal(t, "refresh-token", pair.RefreshToken)
	assert.Equal(t, user.ID, got.ID)

	store.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	user := verifiedUser(t, "correct horse battery")

	tests := []struct {
		name  string
		setup func(store *MockCredentialStore)
		pass  string
	}{
		{
			name: "unknown email",
			setup: func(store *MockCredentialStore) {
				store.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errStoreNotFound)
			},
			pass: "correct horse battery",
		},
		{
			name: "wrong password",
			setup: func(store *MockCredentialStore) {
				store.On("GetByEmail", mock.Anything, mock.Anything).Return(user, nil)
			},
			pass: "not the password",
		},
		{
			name: "record without hash",
			setup: func(store *MockCredentialStore) {
				store.On("GetByEmail", mock.Anything, mock.Anything).Return(&model.User{
					ID:         uuid.New(),
					Email:      "ada@example.com",
					IsVerified: true,
				}, nil)
			},
			pass: "correct horse battery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCredentialStore)
			tt.setup(store)

			svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

			_, _, err := svc.Login(context.Background(), "ada@example.com", tt.pass)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestLoginFederatedOnlyAccount(t *testing.T) {
	store := new(MockCredentialStore)

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID:         uuid.New(),
		Email:      "ada@example.com",
		GoogleID:   "google-sub-1",
		IsVerified: true,
	}, nil)

	svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

	_, _, err := svc.Login(context.Background(), "ada@example.com", "anything")
	assert.ErrorIs(t, err, auth.ErrFederatedAccount)
}

func TestLoginUnverifiedReissuesVerification(t *testing.T) {
	store := new(MockCredentialStore)
	mailer := new(MockMailer)

	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: hash,
	}

	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	store.On("SetVerificationToken", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)
	mailer.On("SendVerificationEmail", "ada@example.com", "Ada", mock.AnythingOfType("string")).Return()

	svc := newAuthenticator(store, new(MockTokenService), mailer)

	_, _, err = svc.Login(context.Background(), "ada@example.com", "correct horse battery")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	store.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	store := new(MockCredentialStore)
	user := &model.User{ID: uuid.New(), Email: "ada@example.com", VerificationToken: "tok-1"}

	store.On("GetByVerificationToken", mock.Anything, "tok-1").Return(user, nil).Once()
	store.On("MarkVerified", mock.Anything, user.ID).Return(nil).Once()
	store.On("GetByVerificationToken", mock.Anything, "tok-1").Return(nil, errStoreNotFound)

	svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

	got, err := svc.VerifyEmail(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Empty(t, got.VerificationToken)

	_, err = svc.VerifyEmail(context.Background(), "tok-1")
	assert.ErrorIs(t, err, auth.ErrVerificationNotFound)
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	store := new(MockCredentialStore)
	store.On("GetByVerificationToken", mock.Anything, "tok-1").Return(&model.User{
		ID:         uuid.New(),
		IsVerified: true,
	}, nil)

	svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

	_, err := svc.VerifyEmail(context.Background(), "tok-1")
	assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
	store.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestRefreshMintsAccessOnly(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)

	user := &model.User{ID: uuid.New(), Email: "ada@example.com", RefreshToken: "refresh-1"}

	claims := &auth.SessionClaims{UID: user.ID.String()}

	tokens.On("ValidateRefreshToken", "refresh-1").Return(claims, nil)
	store.On("GetByRefreshToken", mock.Anything, "refresh-1").Return(user, nil)
	tokens.On("MintAccessToken", mock.Anything).Return("access-2", nil)

	svc := newAuthenticator(store, tokens, new(MockMailer))

	access, got, err := svc.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, user.ID, got.ID)

	tokens.AssertNotCalled(t, "MintRefreshToken", mock.Anything)
	store.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshRejectsUnknownStoredValue(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)

	// Signature checks out but no record holds this value: revoked.
	tokens.On("ValidateRefreshToken", "refresh-stale").Return(&auth.SessionClaims{UID: uuid.NewString()}, nil)
	store.On("GetByRefreshToken", mock.Anything, "refresh-stale").Return(nil, errStoreNotFound)

	svc := newAuthenticator(store, tokens, new(MockMailer))

	_, _, err := svc.Refresh(context.Background(), "refresh-stale")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestRefreshRejectsSubjectMismatch(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)

	user := &model.User{ID: uuid.New()}

	tokens.On("ValidateRefreshToken", "refresh-1").Return(&auth.SessionClaims{UID: uuid.NewString()}, nil)
	store.On("GetByRefreshToken", mock.Anything, "refresh-1").Return(user, nil)

	svc := newAuthenticator(store, tokens, new(MockMailer))

	_, _, err := svc.Refresh(context.Background(), "refresh-1")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestRefreshRejectsBadSignature(t *testing.T) {
	tokens := new(MockTokenService)
	tokens.On("ValidateRefreshToken", "garbage").Return(nil, auth.ErrTokenMalformed)

	svc := newAuthenticator(new(MockCredentialStore), tokens, new(MockMailer))

	_, _, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestFederatedLoginReusesExistingAccount(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)
	verifier := new(MockAssertionVerifier)

	user := verifiedUser(t, "correct horse battery")

	verifier.On("Verify", mock.Anything, "assertion-1").Return(&auth.FederatedIdentity{
		ProviderID: "google-sub-1",
		Email:      "Ada@Example.com",
		Name:       "Ada Lovelace",
		Picture:    "https://img.example.com/ada.png",
	}, nil)
	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	store.On("LinkFederatedIdentity", mock.Anything, user.ID, "google-sub-1", "https://img.example.com/ada.png").Return(nil)
	tokens.On("MintAccessToken", mock.Anything).Return("access-token", nil)
	tokens.On("MintRefreshToken", mock.Anything).Return("refresh-token", nil)
	store.On("StoreRefreshToken", mock.Anything, user.ID, "refresh-token").Return(nil)

	svc := newAuthenticator(store, tokens, new(MockMailer)).WithAssertionVerifier(verifier)

	pair, got, err := svc.FederatedLogin(context.Background(), "assertion-1")
	require.NoError(t, err)
	assert.Equal(t, "access-token", pair.AccessToken)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "google-sub-1", got.GoogleID)

	store.AssertExpectations(t)
}

func TestFederatedLoginCreatesVerifiedAccount(t *testing.T) {
	store := new(MockCredentialStore)
	tokens := new(MockTokenService)
	verifier := new(MockAssertionVerifier)

	newID := uuid.New()

	verifier.On("Verify", mock.Anything, "assertion-1").Return(&auth.FederatedIdentity{
		ProviderID: "google-sub-2",
		Email:      "grace@example.com",
		Name:       "Grace Hopper",
	}, nil)
	store.On("GetByEmail", mock.Anything, "grace@example.com").Return(nil, errStoreNotFound)
	store.On("Register", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*model.User)
			assert.True(t, u.IsVerified)
			assert.Empty(t, u.PasswordHash)
			assert.Equal(t, "google-sub-2", u.GoogleID)
		}).
		Return(&model.User{ID: newID, Email: "grace@example.com", GoogleID: "google-sub-2", IsVerified: true}, nil)
	tokens.On("MintAccessToken", mock.Anything).Return("access-token", nil)
	tokens.On("MintRefreshToken", mock.Anything).Return("refresh-token", nil)
	store.On("StoreRefreshToken", mock.Anything, newID, "refresh-token").Return(nil)

	svc := newAuthenticator(store, tokens, new(MockMailer)).WithAssertionVerifier(verifier)

	pair, got, err := svc.FederatedLogin(context.Background(), "assertion-1")
	require.NoError(t, err)
	assert.NotNil(t, pair)
	assert.Equal(t, newID, got.ID)
}

func TestFederatedLoginRejectsBadAssertion(t *testing.T) {
	verifier := new(MockAssertionVerifier)
	verifier.On("Verify", mock.Anything, "bad").Return(nil, auth.ErrInvalidAssertion)

	svc := newAuthenticator(new(MockCredentialStore), new(MockTokenService), new(MockMailer)).
		WithAssertionVerifier(verifier)

	_, _, err := svc.FederatedLogin(context.Background(), "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidAssertion)
}

func TestLogoutRevokesStoredRefreshToken(t *testing.T) {
	store := new(MockCredentialStore)
	id := uuid.New()

	store.On("ClearRefreshToken", mock.Anything, id).Return(nil)

	svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

	require.NoError(t, svc.Logout(context.Background(), id))
	store.AssertExpectations(t)
}

func TestVerificationStatus(t *testing.T) {
	store := new(MockCredentialStore)
	store.On("GetByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID:         uuid.New(),
		IsVerified: true,
	}, nil)
	store.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, errStoreNotFound)

	svc := newAuthenticator(store, new(MockTokenService), new(MockMailer))

	verified, err := svc.VerificationStatus(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, verified)

	_, err = svc.VerificationStatus(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}
