package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Controllers groups the route handlers the server mounts.
type Controllers struct {
	Auth   *AuthController
	User   *UserController
	Movies *MovieController
}

// Middleware groups the cross-cutting handlers routes use.
type Middleware struct {
	// Session authenticates requests from their cookies.
	Session fiber.Handler
	// Cache serves repeated catalog reads from the response cache.
	Cache fiber.Handler
}

// RegisterRoutes mounts the full API surface. Static routes register before
// parameterized siblings so "/movies/popular" never matches ":tmdbId".
func RegisterRoutes(app *fiber.App, ctrl Controllers, mw Middleware) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", ctrl.Auth.Signup)
	authGroup.Post("/login", ctrl.Auth.Login)
	authGroup.Post("/google/callback", ctrl.Auth.GoogleCallback)
	authGroup.Get("/verify-email/:token", ctrl.Auth.VerifyEmail)
	authGroup.Get("/check-verification/:email", ctrl.Auth.CheckVerification)
	authGroup.Post("/logout", mw.Session, ctrl.Auth.Logout)
	authGroup.Get("/check", mw.Session, ctrl.Auth.Check)

	user := api.Group("/user", mw.Session)
	user.Get("/profile", ctrl.User.Profile)
	user.Put("/profile", ctrl.User.UpdateProfile)
	user.Get("/predict-favorite-genre", ctrl.User.FavoriteGenres)
	user.Get("/activity", ctrl.User.Activity)
	user.Get("/activity/stream", ctrl.User.ActivityStream)
	user.Get("/watchlist", ctrl.User.Watchlist)
	user.Get("/reviews", ctrl.User.Reviews)
	user.Post("/:tmdbId/review", ctrl.User.AddReview)
	user.Post("/:tmdbId/watchlist", ctrl.User.AddToWatchlist)
	user.Delete("/:tmdbId/watchlist", ctrl.User.RemoveFromWatchlist)

	movies := api.Group("/movies", mw.Session, mw.Cache)
	movies.Get("/popular", ctrl.Movies.Popular)
	movies.Get("/now-playing", ctrl.Movies.NowPlaying)
	movies.Get("/all", ctrl.Movies.Browse)
	movies.Get("/:tmdbId/reviews", ctrl.Movies.MovieReviews)
	movies.Get("/:tmdbId", ctrl.Movies.MovieByID)

	charts := api.Group("/top-charts", mw.Session, mw.Cache)
	charts.Get("/popularity", ctrl.Movies.ChartPopular)
	charts.Get("/top-rated", ctrl.Movies.ChartTopRated)
}
