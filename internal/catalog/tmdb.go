package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/goliatone/go-errors"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// ErrMovieNotFound is returned when the upstream catalog has no record for
// the requested id.
var ErrMovieNotFound = errors.New("Movie not found on TMDB", errors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode("MOVIE_NOT_FOUND")

// Movie is the full upstream record for a single title.
type Movie struct {
	TMDBID      int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	Runtime     int     `json:"runtime"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Year extracts the release year, empty when unknown.
func (m *Movie) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// PosterURL resolves the poster path against the image CDN.
func (m *Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

// Summary is the list-shaped projection served by browse endpoints.
type Summary struct {
	TMDBID    int64    `json:"tmdbId"`
	Title     string   `json:"title"`
	Year      string   `json:"year"`
	Rating    float64  `json:"rating"`
	Genres    []string `json:"genres,omitempty"`
	PosterURL string   `json:"posterUrl"`
}

// SearchParams narrows a catalog browse. A non-empty Query switches from
// discovery to text search.
type SearchParams struct {
	Query     string
	Genre     string
	YearFrom  int
	YearTo    int
	MinRating float64
	Page      int
}

// SearchResult is a browse page plus its pagination envelope.
type SearchResult struct {
	Movies       []Summary `json:"movies"`
	CurrentPage  int       `json:"currentPage"`
	TotalPages   int       `json:"totalPages"`
	TotalResults int       `json:"totalMovies"`
}

type listResponse struct {
	Page         int          `json:"page"`
	Results      []movieEntry `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

type movieEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
}

type genreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Client talks to the TMDB v3 API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Client against the given API base.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// MovieByID fetches a single title.
func (c *Client) MovieByID(ctx context.Context, tmdbID int64) (*Movie, error) {
	var movie Movie
	path := fmt.Sprintf("/movie/%d", tmdbID)
	if err := c.get(ctx, path, url.Values{"language": {"en-US"}}, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Popular returns the current popular list.
func (c *Client) Popular(ctx context.Context, page int) ([]Summary, error) {
	return c.list(ctx, "/movie/popular", page)
}

// NowPlaying returns titles currently in theaters.
func (c *Client) NowPlaying(ctx context.Context, page int) ([]Summary, error) {
	return c.list(ctx, "/movie/now_playing", page)
}

// TopRated returns the all-time top rated list.
func (c *Client) TopRated(ctx context.Context, page int) ([]Summary, error) {
	return c.list(ctx, "/movie/top_rated", page)
}

// Genres returns the id to name mapping for movie genres.
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	var resp genreListResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}

	genres := make(map[int]string, len(resp.Genres))
	for _, g := range resp.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

// Search runs a filtered browse. With a query it hits text search, otherwise
// discovery; both paths apply the year, rating, and genre filters.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	genres, err := c.Genres(ctx)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	path := "/discover/movie"
	if params.Query != "" {
		path = "/search/movie"
		q.Set("query", params.Query)
	}

	if params.YearFrom > 0 {
		q.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", params.YearFrom))
	}
	if params.YearTo > 0 {
		q.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", params.YearTo))
	}
	if params.MinRating > 0 {
		q.Set("vote_average.gte", strconv.FormatFloat(params.MinRating, 'f', -1, 64))
	}
	if params.Genre != "" {
		for id, name := range genres {
			if strings.EqualFold(name, params.Genre) {
				q.Set("with_genres", strconv.Itoa(id))
				break
			}
		}
	}

	var resp listResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Movies:       make([]Summary, 0, len(resp.Results)),
		CurrentPage:  page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}

	for _, entry := range resp.Results {
		if params.MinRating > 0 && entry.VoteAverage < params.MinRating {
			continue
		}
		result.Movies = append(result.Movies, summarize(entry, genres))
	}

	return result, nil
}

func (c *Client) list(ctx context.Context, path string, page int) ([]Summary, error) {
	if page < 1 {
		page = 1
	}

	var resp listResponse
	q := url.Values{
		"language": {"en-US"},
		"page":     {strconv.Itoa(page)},
	}
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	movies := make([]Summary, 0, len(resp.Results))
	for _, entry := range resp.Results {
		movies = append(movies, summarize(entry, nil))
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build catalog request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "path", path, "error", err)
		return errors.Wrap(err, errors.CategoryOperation, "catalog request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrMovieNotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("catalog returned unexpected status", "path", path, "status", resp.StatusCode)
		return errors.New("catalog returned unexpected status", errors.CategoryOperation).
			WithMetadata(map[string]any{"status": resp.StatusCode, "path": path})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to decode catalog response")
	}

	return nil
}

func summarize(entry movieEntry, genres map[int]string) Summary {
	s := Summary{
		TMDBID: entry.ID,
		Title:  entry.Title,
		Rating: entry.VoteAverage,
	}
	if len(entry.ReleaseDate) >= 4 {
		s.Year = entry.ReleaseDate[:4]
	}
	if entry.PosterPath != "" {
		s.PosterURL = posterBaseURL + entry.PosterPath
	}
	if genres != nil {
		for _, id := range entry.GenreIDs {
			if name, ok := genres[id]; ok {
				s.Genres = append(s.Genres, name)
			}
		}
	}
	return s
}
