package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Movie is a locally persisted snapshot of a TMDB record, refreshed whenever
// the catalog proxy fetches upstream lists.
type Movie struct {
	bun.BaseModel `bun:"table:movies,alias:mov"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TMDBID        int64      `bun:"tmdb_id,notnull,unique" json:"tmdb_id"`
	Title         string     `bun:"title" json:"title,omitempty"`
	Year          string     `bun:"year" json:"year,omitempty"`
	Rating        float64    `bun:"rating" json:"rating,omitempty"`
	PosterURL     string     `bun:"poster_url" json:"poster_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Review is a user's rating and comment for a movie, keyed by TMDB id.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:rev"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	TMDBID        int64      `bun:"tmdb_id,notnull" json:"tmdb_id"`
	Rating        int        `bun:"rating,notnull" json:"rating"`
	Comment       string     `bun:"comment" json:"comment,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// WatchlistItem marks a movie as saved by a user. The (user_id, tmdb_id)
// pair is unique; adding the same movie twice is a conflict.
type WatchlistItem struct {
	bun.BaseModel `bun:"table:watchlist_items,alias:wli"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	TMDBID        int64      `bun:"tmdb_id,notnull" json:"tmdb_id"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ActivityType enumerates the feed event kinds.
type ActivityType = string

const (
	ActivityWatchlistAdd    ActivityType = "watchlist"
	ActivityWatchlistRemove ActivityType = "removeWatchlist"
	ActivityReview          ActivityType = "review"
)

// Activity is a single feed entry, persisted and broadcast when a user
// touches their watchlist or posts a review.
type Activity struct {
	bun.BaseModel `bun:"table:activities,alias:act"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Type          string     `bun:"activity_type,notnull" json:"type"`
	TMDBID        int64      `bun:"tmdb_id" json:"tmdb_id,omitempty"`
	MovieTitle    string     `bun:"movie_title,notnull" json:"movie_title"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
