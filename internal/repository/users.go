package repository

import (
	"context"
	"time"

	"github.com/goliatone/filmhub/internal/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store for identity records. Every finder treats a
// missing row as a record-not-found error distinguishable through
// repository.IsRecordNotFound.
type Users interface {
	repository.Repository[*model.User]

	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*model.User, error)

	Register(ctx context.Context, user *model.User) (*model.User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *model.User) (*model.User, error)

	// StoreRefreshToken overwrites the record's refresh secret and stamps
	// last_login_at. Concurrent logins race on the final value and the last
	// writer wins; the loser's refresh token stops matching and its session
	// ends at the next rotation attempt.
	StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// ClearRefreshToken nulls the stored refresh secret, revoking every
	// outstanding refresh token for the account.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	// SetVerificationToken replaces the pending verification token. Used at
	// signup and again when an unverified login triggers redelivery.
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error

	// MarkVerified flips is_verified and destroys the verification token in
	// one statement, making redemption one-shot.
	MarkVerified(ctx context.Context, id uuid.UUID) error

	// LinkFederatedIdentity attaches a provider id (and picture, when the
	// record has none) to an existing account. This is the reconciliation
	// write: a credential record and a federated login sharing an email
	// become one identity.
	LinkFederatedIdentity(ctx context.Context, id uuid.UUID, providerID, picture string) error

	// UpdateProfile writes the mutable profile fields.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio string) (*model.User, error)
}

type users struct {
	repository.Repository[*model.User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the users repository over a bun handle.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*model.User](db, repository.ModelHandlers[*model.User]{
		NewRecord: func() *model.User { return &model.User{} },
		GetID: func(u *model.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *model.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{Repository: repo, db: db}
}

func (a *users) Register(ctx context.Context, user *model.User) (*model.User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *model.User) (*model.User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return a.getOne(ctx, "LOWER(?TableAlias.email) = ?", model.NormalizeEmail(email))
}

func (a *users) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return a.getOne(ctx, "?TableAlias.verification_token = ?", token)
}

func (a *users) GetByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	return a.getOne(ctx, "?TableAlias.refresh_token = ?", token)
}

func (a *users) getOne(ctx context.Context, where string, value string) (*model.User, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &model.User{}
	err := a.db.NewSelect().
		Model(record).
		Where(where, value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *users) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	// NOTE: raw update so last_login_at and refresh_token move together in
	// a single statement, the record-level atomicity the store guarantees.
	now := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"refresh_token" = ?,
			"last_login_at" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, token, now, now, id).Exec(ctx)

	return err
}

func (a *users) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"refresh_token" = NULL,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, time.Now(), id).Exec(ctx)

	return err
}

func (a *users) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"verification_token" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, token, time.Now(), id).Exec(ctx)

	return err
}

func (a *users) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"is_verified" = TRUE,
			"verification_token" = NULL,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, time.Now(), id).Exec(ctx)

	return err
}

func (a *users) LinkFederatedIdentity(ctx context.Context, id uuid.UUID, providerID, picture string) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"google_id" = ?,
			"profile_picture" = CASE WHEN "profile_picture" IS NULL OR "profile_picture" = '' THEN ? ELSE "profile_picture" END,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, providerID, picture, time.Now(), id).Exec(ctx)

	return err
}

func (a *users) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, bio string) (*model.User, error) {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"name" = ?,
			"phone_number" = ?,
			"bio" = ?,
			"updated_at" = ?
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, name, phone, bio, time.Now(), id).Exec(ctx)

	if err != nil {
		return nil, err
	}

	return a.Repository.GetByID(ctx, id.String())
}

func prepareUserDefaults(user *model.User) {
	if user == nil {
		return
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = model.NormalizeEmail(user.Email)
}
