package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/goliatone/filmhub/internal/model"
	errors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// CredentialStore is the persistence surface the core needs: single-record
// lookups by email / token plus atomic read-modify-write helpers. The bun
// users repository implements it.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*model.User, error)
	Register(ctx context.Context, user *model.User) (*model.User, error)
	StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	LinkFederatedIdentity(ctx context.Context, id uuid.UUID, providerID, picture string) error
}

// Mailer delivers verification messages. Implementations are best-effort:
// they must not block the caller on delivery and must log failures instead
// of returning them.
type Mailer interface {
	SendVerificationEmail(to, name, token string)
}

// AssertionVerifier validates a provider-issued identity assertion and
// extracts its profile claims. Fails closed on any signature or audience
// mismatch.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*FederatedIdentity, error)
}

// TokenPair is the session artifact set returned by the login paths.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignupInput carries the credential signup payload, already validated at
// the transport layer.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Authenticator owns the session lifecycle: credential signup with email
// verification, password login, refresh rotation, federated reconciliation,
// and logout revocation.
type Authenticator struct {
	store            CredentialStore
	tokens           TokenService
	mailer           Mailer
	verifier         AssertionVerifier
	logger           *slog.Logger
	deterministicIDs bool
}

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(store CredentialStore, tokens TokenService, mailer Mailer, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		store:  store,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
	}
}

// WithAssertionVerifier enables federated login.
func (s *Authenticator) WithAssertionVerifier(verifier AssertionVerifier) *Authenticator {
	s.verifier = verifier
	return s
}

// WithDeterministicIDs makes signup derive the record id from the email.
func (s *Authenticator) WithDeterministicIDs(enabled bool) *Authenticator {
	s.deterministicIDs = enabled
	return s
}

// Signup creates an unverified credential account and dispatches the
// verification message. It never logs the user in.
func (s *Authenticator) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.IsNotFound(err) {
		s.logger.Error("signup store lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check existing account")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		if stderrors.Is(err, ErrNoEmptyString) {
			return nil, err
		}
		s.logger.Error("signup password hash failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	token, err := NewVerificationToken()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:              input.Name,
		Email:             email,
		PasswordHash:      hash,
		IsVerified:        false,
		VerificationToken: token,
	}

	if s.deterministicIDs {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	user, err = s.store.Register(ctx, user)
	if err != nil {
		// The pre-check races concurrent signups; the unique index is
		// the real guard.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		s.logger.Error("signup store create failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create user")
	}

	// Delivery is best-effort; a mail failure never fails the signup.
	s.mailer.SendVerificationEmail(user.Email, user.Name, token)

	return user, nil
}

// Login verifies credentials and issues a fresh token pair, rotating the
// stored refresh secret. Unknown email, missing hash, and bad password all
// surface the same error.
func (s *Authenticator) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.store.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("login store lookup failed", "error", err)
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.IsFederatedOnly() {
		return nil, nil, ErrFederatedAccount
	}

	if user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.reissueVerification(ctx, user); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrEmailNotVerified
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// VerifyEmail redeems a single-use verification token. Redemption is
// destructive: a second call with the same token fails as not found.
func (s *Authenticator) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	user, err := s.store.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrVerificationNotFound
		}
		s.logger.Error("verification store lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve verification token")
	}

	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if err := s.store.MarkVerified(ctx, user.ID); err != nil {
		s.logger.Error("verification store update failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to mark account verified")
	}

	user.IsVerified = true
	user.VerificationToken = ""

	return user, nil
}

// Refresh validates a refresh token against both its signature and the value
// currently stored on the record, then mints a new access token. The stored
// value is the sole source of truth: a well-formed token that no record
// holds is invalid.
func (s *Authenticator) Refresh(ctx context.Context, refreshToken string) (string, *model.User, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", nil, err
	}

	user, err := s.store.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil, ErrUnauthenticated
		}
		s.logger.Error("refresh store lookup failed", "error", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during refresh")
	}

	if claims.UserID() != user.ID.String() {
		s.logger.Error("refresh token subject does not match record", "claims_uid", claims.UserID(), "record_id", user.ID)
		return "", nil, ErrUnauthenticated
	}

	access, err := s.tokens.MintAccessToken(IdentityFromUser(user))
	if err != nil {
		return "", nil, err
	}

	return access, user, nil
}

// FederatedLogin verifies a provider assertion and reconciles it against the
// record space: an existing record with the same email is reused, otherwise
// a verified federated account is created.
func (s *Authenticator) FederatedLogin(ctx context.Context, assertion string) (*TokenPair, *model.User, error) {
	if s.verifier == nil {
		return nil, nil, errors.New("federated login is not configured", errors.CategoryInternal)
	}

	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		s.logger.Error("federated assertion rejected", "error", err)
		return nil, nil, ErrInvalidAssertion
	}

	email := model.NormalizeEmail(identity.Email)

	user, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.store.LinkFederatedIdentity(ctx, user.ID, identity.ProviderID, identity.Picture); err != nil {
				s.logger.Error("federated link failed", "error", err)
				return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to link federated identity")
			}
			user.GoogleID = identity.ProviderID
		}
	case errors.IsNotFound(err):
		user = &model.User{
			Name:           identity.Name,
			Email:          email,
			GoogleID:       identity.ProviderID,
			ProfilePicture: identity.Picture,
			IsVerified:     true,
		}
		if user, err = s.store.Register(ctx, user); err != nil {
			s.logger.Error("federated store create failed", "error", err)
			return nil, nil, errors.Wrap(err, errors.CategoryInternal, "could not create federated user")
		}
	default:
		s.logger.Error("federated store lookup failed", "error", err)
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during reconciliation")
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Logout revokes the account's refresh token server-side. Clearing cookies
// alone would leave a stolen refresh token live for its full lifetime.
func (s *Authenticator) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		s.logger.Error("logout revocation failed", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke refresh token")
	}
	return nil
}

// VerificationStatus reports whether the account behind an email is verified.
func (s *Authenticator) VerificationStatus(ctx context.Context, email string) (bool, error) {
	user, err := s.store.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return false, ErrIdentityNotFound
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user.IsVerified, nil
}

// issueSession mints a fresh token pair and persists the refresh secret on
// the record. Concurrent calls for the same account race on the stored
// value; the last writer wins.
func (s *Authenticator) issueSession(ctx context.Context, user *model.User) (*TokenPair, error) {
	identity := IdentityFromUser(user)

	access, err := s.tokens.MintAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.MintRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	if err := s.store.StoreRefreshToken(ctx, user.ID, refresh); err != nil {
		s.logger.Error("refresh rotation write failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	user.RefreshToken = refresh

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// reissueVerification rotates the pending verification token and redelivers
// the message so users can recover from a lost original.
func (s *Authenticator) reissueVerification(ctx context.Context, user *model.User) error {
	token, err := NewVerificationToken()
	if err != nil {
		return err
	}

	if err := s.store.SetVerificationToken(ctx, user.ID, token); err != nil {
		s.logger.Error("verification token rotation failed", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to rotate verification token")
	}

	s.mailer.SendVerificationEmail(user.Email, user.Name, token)

	return nil
}

// isUniqueViolation matches the store's duplicate-key failure. SQLite
// reports it as a constraint message rather than a typed error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

type userIdentity struct {
	id    string
	name  string
	email string
}

func (i userIdentity) ID() string    { return i.id }
func (i userIdentity) Name() string  { return i.name }
func (i userIdentity) Email() string { return i.email }

var _ Identity = userIdentity{}

// IdentityFromUser adapts a stored record to the token-facing identity.
func IdentityFromUser(u *model.User) Identity {
	return userIdentity{
		id:    u.ID.String(),
		name:  u.Name,
		email: u.Email,
	}
}
