package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/goliatone/filmhub/internal/model"
	"github.com/goliatone/filmhub/internal/repository"
	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Recorder persists feed entries and pushes them to the user's live streams.
type Recorder struct {
	store  repository.Activities
	hub    *Hub
	logger *slog.Logger
}

// NewRecorder returns a Recorder over the given store and hub.
func NewRecorder(store repository.Activities, hub *Hub, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// Record appends a feed entry and broadcasts it to the user's open streams.
// The persisted row is the source of truth; a broadcast that finds no open
// connection is simply dropped.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, kind model.ActivityType, tmdbID int64, movieTitle string) (*model.Activity, error) {
	entry := &model.Activity{
		UserID:     userID,
		Type:       kind,
		TMDBID:     tmdbID,
		MovieTitle: movieTitle,
	}

	entry, err := r.store.Create(ctx, entry)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to record activity")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		r.logger.Error("activity broadcast encode failed", "error", err)
		return entry, nil
	}

	r.hub.SendToUser(userID, FormatEvent("activity", string(payload)))

	return entry, nil
}

// Recent returns the user's latest feed entries, newest first.
func (r *Recorder) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Activity, error) {
	return r.store.ListRecentByUser(ctx, userID, limit)
}
