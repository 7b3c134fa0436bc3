package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/filmhub/internal/activity"
	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/cache"
	"github.com/goliatone/filmhub/internal/catalog"
	"github.com/goliatone/filmhub/internal/config"
	"github.com/goliatone/filmhub/internal/database"
	"github.com/goliatone/filmhub/internal/handler"
	"github.com/goliatone/filmhub/internal/mailer"
	"github.com/goliatone/filmhub/internal/middleware"
	"github.com/goliatone/filmhub/internal/repository"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting filmhub",
		"addr", cfg.ServerAddr,
		"env", cfg.AppEnv,
	)

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewManager(db)
	repo.MustValidate()

	tokens := auth.NewTokenService(
		[]byte(cfg.SigningKey),
		[]byte(cfg.RefreshSigningKey),
		cfg.AccessTokenDuration,
		cfg.RefreshTokenDuration,
		cfg.Issuer,
		logger,
	)

	mail := newMailer(cfg, logger)

	auther := auth.NewAuthenticator(repo.Users(), tokens, mail, logger).
		WithDeterministicIDs(cfg.DeterministicUserIDs)

	if cfg.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(cfg.GoogleClientID, logger)
		if err != nil {
			logger.Error("failed to initialize google verifier", "error", err)
			os.Exit(1)
		}
		defer verifier.Close()
		auther.WithAssertionVerifier(verifier)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, federated login disabled")
	}

	cookies := auth.NewCookieWriter(!cfg.IsDevelopment(), cfg.AccessTokenDuration, cfg.RefreshTokenDuration)

	catalogClient := catalog.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, logger)

	store := cache.NewMemory()
	defer store.Close()

	hub := activity.NewHub()
	recorder := activity.NewRecorder(repo.Activities(), hub, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: handler.NewErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"app":    cfg.AppName,
		})
	})

	session := middleware.Session(middleware.SessionConfig{
		Tokens:    tokens,
		Refresher: auther,
		Cookies:   cookies,
		Logger:    logger,
	})

	handler.RegisterRoutes(app,
		handler.Controllers{
			Auth:   handler.NewAuthController(auther, cookies, repo.Users(), logger),
			User:   handler.NewUserController(repo, catalogClient, recorder, hub, logger),
			Movies: handler.NewMovieController(catalogClient, repo, logger),
		},
		handler.Middleware{
			Session: session,
			Cache:   middleware.CacheResponses(store, cfg.CacheTTL),
		},
	)

	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

func newMailer(cfg *config.Config, logger *slog.Logger) auth.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, outgoing email disabled")
		return mailer.NewWithSender(mailer.Discard{}, cfg.FrontendURL, logger)
	}

	mail, err := mailer.New(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FromName:    cfg.AppName,
		TLS:         cfg.SMTPTLS,
		FrontendURL: cfg.FrontendURL,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", "error", err)
		os.Exit(1)
	}
	return mail
}
