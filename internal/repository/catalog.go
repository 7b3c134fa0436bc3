package repository

import (
	"context"

	"github.com/goliatone/filmhub/internal/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Movies persists catalog snapshots fetched from the upstream provider.
type Movies interface {
	repository.Repository[*model.Movie]

	// UpsertByTMDBID inserts or refreshes a snapshot keyed by its TMDB id.
	UpsertByTMDBID(ctx context.Context, record *model.Movie) (*model.Movie, error)
}

type movies struct {
	repository.Repository[*model.Movie]
	db *bun.DB
}

func NewMoviesRepository(db *bun.DB) Movies {
	repo := repository.NewRepository[*model.Movie](db, repository.ModelHandlers[*model.Movie]{
		NewRecord: func() *model.Movie { return &model.Movie{} },
		GetID: func(m *model.Movie) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *model.Movie, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &movies{Repository: repo, db: db}
}

func (m *movies) UpsertByTMDBID(ctx context.Context, record *model.Movie) (*model.Movie, error) {
	existing := &model.Movie{}
	err := m.db.NewSelect().
		Model(existing).
		Where("?TableAlias.tmdb_id = ?", record.TMDBID).
		Limit(1).
		Scan(ctx)

	if err == nil {
		record.ID = existing.ID
		return m.Repository.Update(ctx, record)
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return m.Repository.Create(ctx, record)
}

// Reviews stores user reviews keyed by TMDB id.
type Reviews interface {
	repository.Repository[*model.Review]

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Review, error)
	ListByMovie(ctx context.Context, tmdbID int64) ([]*model.Review, error)
	FindByUserAndMovie(ctx context.Context, userID uuid.UUID, tmdbID int64) (*model.Review, error)
}

type reviews struct {
	repository.Repository[*model.Review]
	db *bun.DB
}

func NewReviewsRepository(db *bun.DB) Reviews {
	repo := repository.NewRepository[*model.Review](db, repository.ModelHandlers[*model.Review]{
		NewRecord: func() *model.Review { return &model.Review{} },
		GetID: func(r *model.Review) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *model.Review, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &reviews{Repository: repo, db: db}
}

func (r *reviews) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Review, error) {
	var records []*model.Review
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	return records, err
}

func (r *reviews) FindByUserAndMovie(ctx context.Context, userID uuid.UUID, tmdbID int64) (*model.Review, error) {
	record := &model.Review{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.tmdb_id = ?", tmdbID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID, "tmdb_id": tmdbID})
		}
		return nil, err
	}
	return record, nil
}

func (r *reviews) ListByMovie(ctx context.Context, tmdbID int64) ([]*model.Review, error) {
	var records []*model.Review
	err := r.db.NewSelect().
		Model(&records).
		Relation("User").
		Where("?TableAlias.tmdb_id = ?", tmdbID).
		Order("created_at DESC").
		Scan(ctx)
	return records, err
}

// Watchlist tracks saved movies per user.
type Watchlist interface {
	repository.Repository[*model.WatchlistItem]

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error)
	Contains(ctx context.Context, userID uuid.UUID, tmdbID int64) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, tmdbID int64) (bool, error)
}

type watchlist struct {
	repository.Repository[*model.WatchlistItem]
	db *bun.DB
}

func NewWatchlistRepository(db *bun.DB) Watchlist {
	repo := repository.NewRepository[*model.WatchlistItem](db, repository.ModelHandlers[*model.WatchlistItem]{
		NewRecord: func() *model.WatchlistItem { return &model.WatchlistItem{} },
		GetID: func(w *model.WatchlistItem) uuid.UUID {
			if w == nil {
				return uuid.Nil
			}
			return w.ID
		},
		SetID: func(w *model.WatchlistItem, id uuid.UUID) {
			if w != nil {
				w.ID = id
			}
		},
	})

	return &watchlist{Repository: repo, db: db}
}

func (w *watchlist) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.WatchlistItem, error) {
	var records []*model.WatchlistItem
	err := w.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	return records, err
}

func (w *watchlist) Contains(ctx context.Context, userID uuid.UUID, tmdbID int64) (bool, error) {
	count, err := w.db.NewSelect().
		Model((*model.WatchlistItem)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.tmdb_id = ?", tmdbID).
		Count(ctx)
	return count > 0, err
}

func (w *watchlist) Remove(ctx context.Context, userID uuid.UUID, tmdbID int64) (bool, error) {
	res, err := w.db.NewDelete().
		Model((*model.WatchlistItem)(nil)).
		Where("user_id = ?", userID).
		Where("tmdb_id = ?", tmdbID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// Activities is the append-mostly feed store.
type Activities interface {
	repository.Repository[*model.Activity]

	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Activity, error)
}

type activities struct {
	repository.Repository[*model.Activity]
	db *bun.DB
}

func NewActivitiesRepository(db *bun.DB) Activities {
	repo := repository.NewRepository[*model.Activity](db, repository.ModelHandlers[*model.Activity]{
		NewRecord: func() *model.Activity { return &model.Activity{} },
		GetID: func(a *model.Activity) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *model.Activity, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &activities{Repository: repo, db: db}
}

func (a *activities) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []*model.Activity
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return records, err
}
