package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/cache"
	"github.com/goliatone/filmhub/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheResponsesServesFromStore(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()

	calls := 0

	app := fiber.New()
	app.Use(middleware.CacheResponses(store, time.Minute))
	app.Get("/movies", func(c *fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"calls": calls})
	})

	first, err := app.Test(httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))

	second, err := app.Test(httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.NoError(t, err)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))

	body, _ := io.ReadAll(second.Body)
	assert.JSONEq(t, `{"calls": 1}`, string(body))
	assert.Equal(t, 1, calls)
}

func TestCacheResponsesKeysOnFullURL(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()

	app := fiber.New()
	app.Use(middleware.CacheResponses(store, time.Minute))
	app.Get("/movies", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"page": c.Query("page")})
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/movies?page=1", nil))
	require.NoError(t, err)

	other, err := app.Test(httptest.NewRequest(http.MethodGet, "/movies?page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", other.Header.Get("X-Cache"))

	body, _ := io.ReadAll(other.Body)
	assert.JSONEq(t, `{"page": "2"}`, string(body))
}

func TestCacheResponsesSkipsWrites(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()

	calls := 0

	app := fiber.New()
	app.Use(middleware.CacheResponses(store, time.Minute))
	app.Post("/movies", func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(http.StatusCreated)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodPost, "/movies", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(http.MethodPost, "/movies", nil))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCacheResponsesSkipsErrors(t *testing.T) {
	store := cache.NewMemory()
	defer store.Close()

	calls := 0

	app := fiber.New()
	app.Use(middleware.CacheResponses(store, time.Minute))
	app.Get("/movies", func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(http.StatusBadGateway)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/movies", nil))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}
