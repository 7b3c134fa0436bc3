package handler

import (
	"bufio"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/activity"
	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/catalog"
	"github.com/goliatone/filmhub/internal/model"
	"github.com/goliatone/filmhub/internal/repository"
	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// UserController serves the authenticated user's profile, watchlist,
// reviews, and activity feed.
type UserController struct {
	repo     repository.Manager
	catalog  *catalog.Client
	recorder *activity.Recorder
	hub      *activity.Hub
	logger   *slog.Logger
}

// NewUserController returns a new UserController.
func NewUserController(repo repository.Manager, catalogClient *catalog.Client, recorder *activity.Recorder, hub *activity.Hub, logger *slog.Logger) *UserController {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserController{
		repo:     repo,
		catalog:  catalogClient,
		recorder: recorder,
		hub:      hub,
		logger:   logger,
	}
}

func requireUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := auth.UserIDFromContext(c.UserContext())
	if !ok {
		return uuid.Nil, auth.ErrUnauthenticated
	}
	return userID, nil
}

func tmdbIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("tmdbId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid movie id, must be a number", errors.CategoryBadInput).
			WithCode(fiber.StatusBadRequest)
	}
	return id, nil
}

// Profile handles GET /api/user/profile.
func (u *UserController) Profile(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	user, err := u.loadUser(c, userID)
	if err != nil {
		return err
	}

	items, err := u.repo.Watchlist().ListByUser(c.UserContext(), userID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load watchlist")
	}

	watchlist := make([]int64, 0, len(items))
	for _, item := range items {
		watchlist = append(watchlist, item.TMDBID)
	}

	return c.JSON(fiber.Map{
		"name":           user.Name,
		"email":          user.Email,
		"googleId":       user.GoogleID,
		"profilePicture": user.ProfilePicture,
		"phoneNumber":    user.Phone,
		"bio":            user.Bio,
		"watchlist":      watchlist,
	})
}

// UpdateProfile handles PUT /api/user/profile. Empty fields keep their
// stored values.
func (u *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	payload := new(ProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(fiber.StatusBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	current, err := u.loadUser(c, userID)
	if err != nil {
		return err
	}

	name := payload.Name
	if name == "" {
		name = current.Name
	}
	phone := payload.NormalizedPhone()
	if phone == "" {
		phone = current.Phone
	}
	bio := payload.Bio
	if bio == "" {
		bio = current.Bio
	}

	user, err := u.repo.Users().UpdateProfile(c.UserContext(), userID, name, phone, bio)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update user profile")
	}

	return c.JSON(fiber.Map{
		"message": "User profile updated successfully",
		"user": fiber.Map{
			"name":        user.Name,
			"phoneNumber": user.Phone,
			"bio":         user.Bio,
		},
	})
}

// Watchlist handles GET /api/user/watchlist, enriching each saved id with
// its catalog details. An upstream miss degrades to the bare id.
func (u *UserController) Watchlist(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	items, err := u.repo.Watchlist().ListByUser(c.UserContext(), userID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load watchlist")
	}

	details := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		movie, err := u.catalog.MovieByID(c.UserContext(), item.TMDBID)
		if err != nil {
			u.logger.Error("watchlist detail fetch failed", "tmdb_id", item.TMDBID, "error", err)
			details = append(details, fiber.Map{
				"tmdbId": item.TMDBID,
				"error":  "Details unavailable",
			})
			continue
		}
		details = append(details, fiber.Map{
			"tmdbId":      movie.TMDBID,
			"title":       movie.Title,
			"releaseDate": movie.ReleaseDate,
			"rating":      movie.VoteAverage,
			"overview":    movie.Overview,
			"posterImage": movie.PosterURL(),
		})
	}

	return c.JSON(fiber.Map{"watchlist": details})
}

// AddToWatchlist handles POST /api/user/:tmdbId/watchlist.
func (u *UserController) AddToWatchlist(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	tmdbID, err := tmdbIDParam(c)
	if err != nil {
		return err
	}

	// The upstream lookup doubles as an existence check.
	movie, err := u.catalog.MovieByID(c.UserContext(), tmdbID)
	if err != nil {
		return err
	}

	exists, err := u.repo.Watchlist().Contains(c.UserContext(), userID, tmdbID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check watchlist")
	}
	if exists {
		return errors.New("Movie is already in your watchlist", errors.CategoryConflict).
			WithCode(fiber.StatusBadRequest).
			WithTextCode("ALREADY_IN_WATCHLIST")
	}

	if _, err := u.repo.Watchlist().Create(c.UserContext(), &model.WatchlistItem{
		UserID: userID,
		TMDBID: tmdbID,
	}); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to add to watchlist")
	}

	u.snapshotMovie(c, movie)

	if _, err := u.recorder.Record(c.UserContext(), userID, model.ActivityWatchlistAdd, tmdbID, movie.Title); err != nil {
		u.logger.Error("watchlist activity record failed", "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Movie added to watchlist",
		"tmdbId":  tmdbID,
		"title":   movie.Title,
	})
}

// RemoveFromWatchlist handles DELETE /api/user/:tmdbId/watchlist.
func (u *UserController) RemoveFromWatchlist(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	tmdbID, err := tmdbIDParam(c)
	if err != nil {
		return err
	}

	removed, err := u.repo.Watchlist().Remove(c.UserContext(), userID, tmdbID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to remove from watchlist")
	}
	if !removed {
		return errors.New("Movie is not in your watchlist", errors.CategoryBadInput).
			WithCode(fiber.StatusBadRequest).
			WithTextCode("NOT_IN_WATCHLIST")
	}

	title := ""
	if movie, err := u.catalog.MovieByID(c.UserContext(), tmdbID); err == nil {
		title = movie.Title
	}

	if _, err := u.recorder.Record(c.UserContext(), userID, model.ActivityWatchlistRemove, tmdbID, title); err != nil {
		u.logger.Error("watchlist activity record failed", "error", err)
	}

	return c.JSON(fiber.Map{
		"message": "Movie removed from watchlist",
		"tmdbId":  tmdbID,
	})
}

// AddReview handles POST /api/user/:tmdbId/review. One review per user per
// movie.
func (u *UserController) AddReview(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	tmdbID, err := tmdbIDParam(c)
	if err != nil {
		return err
	}

	payload := new(ReviewPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(fiber.StatusBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	movie, err := u.catalog.MovieByID(c.UserContext(), tmdbID)
	if err != nil {
		return err
	}

	if _, err := u.repo.Reviews().FindByUserAndMovie(c.UserContext(), userID, tmdbID); err == nil {
		return errors.New("You have already reviewed this movie", errors.CategoryConflict).
			WithCode(fiber.StatusBadRequest).
			WithTextCode("ALREADY_REVIEWED")
	} else if !errors.IsNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check existing review")
	}

	review, err := u.repo.Reviews().Create(c.UserContext(), &model.Review{
		UserID:  userID,
		TMDBID:  tmdbID,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create review")
	}

	u.snapshotMovie(c, movie)

	if _, err := u.recorder.Record(c.UserContext(), userID, model.ActivityReview, tmdbID, movie.Title); err != nil {
		u.logger.Error("review activity record failed", "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review added",
		"review":  review,
	})
}

// Reviews handles GET /api/user/reviews, newest first, enriched with the
// movie title and poster.
func (u *UserController) Reviews(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	records, err := u.repo.Reviews().ListByUser(c.UserContext(), userID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load reviews")
	}

	formatted := make([]fiber.Map, 0, len(records))
	for _, review := range records {
		entry := fiber.Map{
			"tmdbId":    review.TMDBID,
			"rating":    review.Rating,
			"comment":   review.Comment,
			"createdAt": review.CreatedAt,
		}
		if movie, err := u.catalog.MovieByID(c.UserContext(), review.TMDBID); err == nil {
			entry["title"] = movie.Title
			entry["posterImage"] = movie.PosterURL()
		}
		formatted = append(formatted, entry)
	}

	return c.JSON(fiber.Map{"reviews": formatted})
}

// FavoriteGenres handles GET /api/user/predict-favorite-genre: tallies the
// genres of every watchlisted movie and returns the top three.
func (u *UserController) FavoriteGenres(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	items, err := u.repo.Watchlist().ListByUser(c.UserContext(), userID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load watchlist")
	}

	if len(items) == 0 {
		return c.JSON(fiber.Map{
			"message":                 "Watchlist is empty",
			"predictedFavoriteGenres": []string{},
		})
	}

	genreCounts := map[string]int{}
	for _, item := range items {
		movie, err := u.catalog.MovieByID(c.UserContext(), item.TMDBID)
		if err != nil {
			u.logger.Error("genre prediction fetch failed", "tmdb_id", item.TMDBID, "error", err)
			continue
		}
		for _, genre := range movie.Genres {
			genreCounts[genre.Name]++
		}
	}

	type genreCount struct {
		name  string
		count int
	}
	ranked := make([]genreCount, 0, len(genreCounts))
	for name, count := range genreCounts {
		ranked = append(ranked, genreCount{name, count})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })

	top := make([]string, 0, 3)
	for _, g := range ranked {
		if len(top) == 3 {
			break
		}
		top = append(top, g.name)
	}

	return c.JSON(fiber.Map{
		"predictedFavoriteGenres": top,
		"genreCounts":             genreCounts,
	})
}

// Activity handles GET /api/user/activity.
func (u *UserController) Activity(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	records, err := u.recorder.Recent(c.UserContext(), userID, 10)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load activity")
	}

	if records == nil {
		records = []*model.Activity{}
	}

	return c.JSON(fiber.Map{"recentActivity": records})
}

// ActivityStream handles GET /api/user/activity/stream: a server-sent event
// feed of the user's own activity, with periodic heartbeats to keep proxies
// from closing the connection.
func (u *UserController) ActivityStream(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ch := u.hub.Register(userID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer u.hub.Unregister(userID, ch)

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case msg, open := <-ch:
				if !open {
					return
				}
				if _, err := w.WriteString(msg); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(activity.Heartbeat); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func (u *UserController) loadUser(c *fiber.Ctx, userID uuid.UUID) (*model.User, error) {
	user, err := u.repo.Users().GetByID(c.UserContext(), userID.String())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}
	return user, nil
}

func (u *UserController) snapshotMovie(c *fiber.Ctx, movie *catalog.Movie) {
	if _, err := u.repo.Movies().UpsertByTMDBID(c.UserContext(), &model.Movie{
		TMDBID:    movie.TMDBID,
		Title:     movie.Title,
		Year:      movie.Year(),
		Rating:    movie.VoteAverage,
		PosterURL: movie.PosterURL(),
	}); err != nil {
		u.logger.Error("movie snapshot failed", "tmdb_id", movie.TMDBID, "error", err)
	}
}
