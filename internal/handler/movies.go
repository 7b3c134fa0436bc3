package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/catalog"
	"github.com/goliatone/filmhub/internal/model"
	"github.com/goliatone/filmhub/internal/repository"
	errors "github.com/goliatone/go-errors"
)

// topChartSize is how many entries the chart endpoints return.
const topChartSize = 5

// MovieController proxies the catalog and serves per-movie reviews.
type MovieController struct {
	catalog *catalog.Client
	repo    repository.Manager
	logger  *slog.Logger
}

// NewMovieController returns a new MovieController.
func NewMovieController(catalogClient *catalog.Client, repo repository.Manager, logger *slog.Logger) *MovieController {
	if logger == nil {
		logger = slog.Default()
	}
	return &MovieController{
		catalog: catalogClient,
		repo:    repo,
		logger:  logger,
	}
}

// Popular handles GET /api/movies/popular. Fetched titles are also
// snapshotted locally.
func (m *MovieController) Popular(c *fiber.Ctx) error {
	movies, err := m.catalog.Popular(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return err
	}

	m.snapshotSummaries(c, movies)

	return c.JSON(movies)
}

// NowPlaying handles GET /api/movies/now-playing.
func (m *MovieController) NowPlaying(c *fiber.Ctx) error {
	movies, err := m.catalog.NowPlaying(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return err
	}

	m.snapshotSummaries(c, movies)

	return c.JSON(movies)
}

// Browse handles GET /api/movies/all with search and filter parameters.
func (m *MovieController) Browse(c *fiber.Ctx) error {
	minRating, _ := strconv.ParseFloat(c.Query("minRating", "0"), 64)

	result, err := m.catalog.Search(c.UserContext(), catalog.SearchParams{
		Query:     c.Query("search"),
		Genre:     c.Query("genre"),
		YearFrom:  c.QueryInt("yearFrom", 0),
		YearTo:    c.QueryInt("yearTo", 0),
		MinRating: minRating,
		Page:      c.QueryInt("page", 1),
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// MovieByID handles GET /api/movies/:tmdbId.
func (m *MovieController) MovieByID(c *fiber.Ctx) error {
	tmdbID, err := tmdbIDParam(c)
	if err != nil {
		return err
	}

	movie, err := m.catalog.MovieByID(c.UserContext(), tmdbID)
	if err != nil {
		return err
	}

	return c.JSON(movie)
}

// MovieReviews handles GET /api/movies/:tmdbId/reviews, newest first with
// each reviewer's public profile attached.
func (m *MovieController) MovieReviews(c *fiber.Ctx) error {
	tmdbID, err := tmdbIDParam(c)
	if err != nil {
		return err
	}

	records, err := m.repo.Reviews().ListByMovie(c.UserContext(), tmdbID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load reviews")
	}

	if len(records) == 0 {
		return c.JSON(fiber.Map{"message": "No reviews found for this movie", "reviews": []any{}})
	}

	formatted := make([]fiber.Map, 0, len(records))
	for _, review := range records {
		entry := fiber.Map{
			"rating":    review.Rating,
			"comment":   review.Comment,
			"createdAt": review.CreatedAt,
		}
		if review.User != nil {
			entry["user"] = review.User.Public()
		}
		formatted = append(formatted, entry)
	}

	return c.JSON(fiber.Map{"reviews": formatted})
}

// ChartPopular handles GET /api/top-charts/popularity: the five most
// popular titles right now.
func (m *MovieController) ChartPopular(c *fiber.Ctx) error {
	movies, err := m.catalog.Popular(c.UserContext(), 1)
	if err != nil {
		return err
	}
	return c.JSON(truncate(movies, topChartSize))
}

// ChartTopRated handles GET /api/top-charts/top-rated: the five highest
// rated titles of all time.
func (m *MovieController) ChartTopRated(c *fiber.Ctx) error {
	movies, err := m.catalog.TopRated(c.UserContext(), 1)
	if err != nil {
		return err
	}
	return c.JSON(truncate(movies, topChartSize))
}

func truncate(movies []catalog.Summary, n int) []catalog.Summary {
	if len(movies) > n {
		return movies[:n]
	}
	return movies
}

func (m *MovieController) snapshotSummaries(c *fiber.Ctx, movies []catalog.Summary) {
	for _, movie := range movies {
		if _, err := m.repo.Movies().UpsertByTMDBID(c.UserContext(), &model.Movie{
			TMDBID:    movie.TMDBID,
			Title:     movie.Title,
			Year:      movie.Year,
			Rating:    movie.Rating,
			PosterURL: movie.PosterURL,
		}); err != nil {
			m.logger.Error("movie snapshot failed", "tmdb_id", movie.TMDBID, "error", err)
		}
	}
}
