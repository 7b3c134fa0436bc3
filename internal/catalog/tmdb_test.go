package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/filmhub/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestMovieByID(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/movie/603": `{
			"id": 603,
			"title": "The Matrix",
			"overview": "A hacker discovers reality is a simulation.",
			"release_date": "1999-03-31",
			"vote_average": 8.2,
			"poster_path": "/matrix.jpg",
			"runtime": 136,
			"genres": [{"id": 28, "name": "Action"}]
		}`,
	})
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	movie, err := client.MovieByID(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, int64(603), movie.TMDBID)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, "1999", movie.Year())
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", movie.PosterURL())
}

func TestMovieByIDNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	_, err := client.MovieByID(context.Background(), 999999)
	assert.ErrorIs(t, err, catalog.ErrMovieNotFound)
}

func TestPopular(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/movie/popular": `{
			"page": 1,
			"results": [
				{"id": 1, "title": "First", "release_date": "2024-06-01", "vote_average": 7.5, "poster_path": "/a.jpg"},
				{"id": 2, "title": "Second", "release_date": "", "vote_average": 6.1}
			],
			"total_pages": 10,
			"total_results": 200
		}`,
	})
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	movies, err := client.Popular(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "2024", movies[0].Year)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", movies[0].PosterURL)
	assert.Empty(t, movies[1].Year)
	assert.Empty(t, movies[1].PosterURL)
}

func TestSearchResolvesGenreAndFiltersRating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}, {"id": 35, "name": "Comedy"}]}`))
		case "/discover/movie":
			assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
			assert.Equal(t, "2020-01-01", r.URL.Query().Get("primary_release_date.gte"))
			_, _ = w.Write([]byte(`{
				"page": 1,
				"results": [
					{"id": 1, "title": "Keeps", "release_date": "2021-05-01", "vote_average": 8.0, "genre_ids": [28]},
					{"id": 2, "title": "Filtered", "release_date": "2021-05-01", "vote_average": 4.0, "genre_ids": [28]}
				],
				"total_pages": 1,
				"total_results": 2
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	result, err := client.Search(context.Background(), catalog.SearchParams{
		Genre:     "action",
		YearFrom:  2020,
		MinRating: 6.0,
	})
	require.NoError(t, err)
	require.Len(t, result.Movies, 1)
	assert.Equal(t, "Keeps", result.Movies[0].Title)
	assert.Equal(t, []string{"Action"}, result.Movies[0].Genres)
	assert.Equal(t, 2, result.TotalResults)
}

func TestSearchWithQueryUsesTextSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres": []}`))
		case "/search/movie":
			assert.Equal(t, "matrix", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"page": 1, "results": [], "total_pages": 0, "total_results": 0}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	result, err := client.Search(context.Background(), catalog.SearchParams{Query: "matrix"})
	require.NoError(t, err)
	assert.Empty(t, result.Movies)
}

func TestUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-key", nil)

	_, err := client.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrMovieNotFound)
}
