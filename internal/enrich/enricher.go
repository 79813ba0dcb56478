// Package enrich fills activity metadata from outside sources: movie
// details from TMDB and thumbnails inferred from YouTube links. Lookups
// never fail the caller; a miss leaves fields blank.
package enrich

import (
	"context"
	"strings"
	"time"

	"alianca-go/internal/domain/activity"
	"alianca-go/pkg/logger"
)

type MovieSearcher interface {
	SearchMovie(ctx context.Context, title string) (MovieMatch, bool, error)
}

type Recorder interface {
	RecordEnrichment(source, result string)
}

type Enricher struct {
	movies  MovieSearcher
	log     logger.Logger
	metrics Recorder
	timeout time.Duration
}

type Option func(*Enricher)

func WithRecorder(recorder Recorder) Option {
	return func(e *Enricher) {
		e.metrics = recorder
	}
}

// WithTimeout bounds each lookup. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Enricher) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// New builds an Enricher. movies may be nil to disable movie lookups.
func New(movies MovieSearcher, log logger.Logger, opts ...Option) *Enricher {
	if log == nil {
		log = logger.Discard()
	}
	e := &Enricher{movies: movies, log: log, timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Enricher) Enrich(ctx context.Context, category, name string, meta activity.Meta) activity.Meta {
	switch category {
	case activity.CategoryMovies:
		movie, _ := meta.(activity.MovieMeta)
		if enriched, ok := e.enrichMovie(ctx, name, movie); ok {
			return enriched
		}
		return meta
	case activity.CategoryPrayerVideo:
		video, _ := meta.(activity.PrayerVideoMeta)
		if video.URL == "" && looksLikeLink(name) {
			video.URL = name
		}
		if video.URL == "" {
			return meta
		}
		return e.enrichVideo(video)
	case activity.CategoryPodcast:
		podcast, ok := meta.(activity.PodcastMeta)
		if !ok || podcast.URL == "" || podcast.ThumbnailURL != "" {
			return meta
		}
		if id, found := VideoID(podcast.URL); found {
			podcast.ThumbnailURL = ThumbnailURL(id)
			e.record("youtube", "hit")
		}
		return podcast
	default:
		return meta
	}
}

func (e *Enricher) enrichMovie(ctx context.Context, name string, movie activity.MovieMeta) (activity.MovieMeta, bool) {
	if e.movies == nil || movie.TMDBID != 0 || movie.PosterURL != "" {
		return movie, false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	match, ok, err := e.movies.SearchMovie(lookupCtx, name)
	if err != nil {
		e.record("tmdb", "error")
		e.log.Warn("enrich.movie: lookup failed", "title", name, "error", err)
		return movie, false
	}
	if !ok {
		e.record("tmdb", "miss")
		return movie, false
	}
	e.record("tmdb", "hit")

	movie.TMDBID = match.ID
	if movie.Year == "" {
		movie.Year = match.Year
	}
	if movie.Overview == "" {
		movie.Overview = match.Overview
	}
	movie.PosterURL = match.PosterURL
	if movie.Rating == 0 {
		movie.Rating = match.Rating
	}
	return movie, true
}

func (e *Enricher) enrichVideo(video activity.PrayerVideoMeta) activity.Meta {
	id, ok := VideoID(video.URL)
	if !ok {
		e.record("youtube", "miss")
		return video
	}
	e.record("youtube", "hit")
	if video.VideoID == "" {
		video.VideoID = id
	}
	if video.ThumbnailURL == "" {
		video.ThumbnailURL = ThumbnailURL(id)
	}
	return video
}

func (e *Enricher) record(source, result string) {
	if e.metrics != nil {
		e.metrics.RecordEnrichment(source, result)
	}
}

func looksLikeLink(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "youtu.be/") || strings.HasPrefix(value, "www.youtube.com/") ||
		strings.HasPrefix(value, "youtube.com/")
}
