package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager exposes all repositories behind a single handle.
type Manager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Movies() Movies
	Reviews() Reviews
	Watchlist() Watchlist
	Activities() Activities
}

type mngr struct {
	db         *bun.DB
	users      Users
	movies     Movies
	reviews    Reviews
	watchlist  Watchlist
	activities Activities
}

func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:         db,
		users:      NewUsersRepository(db),
		movies:     NewMoviesRepository(db),
		reviews:    NewReviewsRepository(db),
		watchlist:  NewWatchlistRepository(db),
		activities: NewActivitiesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.movies == nil {
		return errors.New("repository movies should be initialized")
	}

	if m.reviews == nil {
		return errors.New("repository reviews should be initialized")
	}

	if m.watchlist == nil {
		return errors.New("repository watchlist should be initialized")
	}

	if m.activities == nil {
		return errors.New("repository activities should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users { return m.users }

func (m mngr) Movies() Movies { return m.movies }

func (m mngr) Reviews() Reviews { return m.reviews }

func (m mngr) Watchlist() Watchlist { return m.watchlist }

func (m mngr) Activities() Activities { return m.activities }
