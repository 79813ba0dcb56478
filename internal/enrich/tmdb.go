package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultTMDBURL       = "https://api.themoviedb.org/3"
	DefaultTMDBImageBase = "https://image.tmdb.org/t/p/w500"
)

type MovieMatch struct {
	ID        int
	Title     string
	Year      string
	Overview  string
	PosterURL string
	Rating    float64
}

type TMDBConfig struct {
	BaseURL   string
	ImageBase string
	APIKey    string
	Language  string
	Timeout   time.Duration
}

// TMDB searches the movie database by title.
type TMDB struct {
	baseURL   string
	imageBase string
	apiKey    string
	language  string
	client    *http.Client
}

func NewTMDB(cfg TMDBConfig) *TMDB {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultTMDBURL
	}
	imageBase := strings.TrimRight(cfg.ImageBase, "/")
	if imageBase == "" {
		imageBase = DefaultTMDBImageBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	language := cfg.Language
	if language == "" {
		language = "pt-BR"
	}
	return &TMDB{
		baseURL:   baseURL,
		imageBase: imageBase,
		apiKey:    cfg.APIKey,
		language:  language,
		client:    &http.Client{Timeout: timeout},
	}
}

// SearchMovie returns the first search result. ok is false when nothing
// matched.
func (t *TMDB) SearchMovie(ctx context.Context, title string) (MovieMatch, bool, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("language", t.language)
	params.Set("include_adult", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/search/movie?"+params.Encode(), nil)
	if err != nil {
		return MovieMatch{}, false, err
	}
	// v4 read tokens go in the header, v3 keys in the query.
	if strings.Count(t.apiKey, ".") == 2 {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	} else {
		query := req.URL.Query()
		query.Set("api_key", t.apiKey)
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return MovieMatch{}, false, fmt.Errorf("tmdb search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return MovieMatch{}, false, fmt.Errorf("tmdb search: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		message := gjson.GetBytes(body, "status_message").String()
		return MovieMatch{}, false, fmt.Errorf("tmdb search: status %d: %s", resp.StatusCode, message)
	}
	if !gjson.ValidBytes(body) {
		return MovieMatch{}, false, fmt.Errorf("tmdb search: invalid json")
	}

	first := gjson.GetBytes(body, "results.0")
	if !first.Exists() {
		return MovieMatch{}, false, nil
	}

	match := MovieMatch{
		ID:       int(first.Get("id").Int()),
		Title:    first.Get("title").String(),
		Overview: first.Get("overview").String(),
		Rating:   first.Get("vote_average").Float(),
	}
	if release := first.Get("release_date").String(); len(release) >= 4 {
		match.Year = release[:4]
	}
	if poster := first.Get("poster_path").String(); poster != "" {
		match.PosterURL = t.imageBase + poster
	}
	return match, true, nil
}
