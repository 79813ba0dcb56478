package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"alianca-go/pkg/calendar"
)

// Meta is one variant of the per-category metadata union.
type Meta interface {
	Category() string
}

// Scheduled is implemented by variants that can be planned for a day.
type Scheduled interface {
	Scheduled() calendar.Date
}

type MovieMeta struct {
	ScheduledDate calendar.Date `json:"scheduledDate,omitempty"`
	TMDBID        int           `json:"tmdbId,omitempty"`
	Year          string        `json:"year,omitempty"`
	Overview      string        `json:"overview,omitempty"`
	PosterURL     string        `json:"posterUrl,omitempty"`
	Rating        float64       `json:"rating,omitempty"`
	Platform      string        `json:"platform,omitempty"`
}

type BibleMeta struct {
	ScheduledDate calendar.Date `json:"scheduledDate,omitempty"`
	Book          string        `json:"book,omitempty"`
	Chapter       int           `json:"chapter,omitempty"`
	Verses        string        `json:"verses,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

type ShoppingMeta struct {
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

type PrayerMeta struct {
	PrayingFor string `json:"prayingFor,omitempty"`
	Intention  string `json:"intention,omitempty"`
	Answered   bool   `json:"answered,omitempty"`
}

type PodcastMeta struct {
	URL          string `json:"url,omitempty"`
	Host         string `json:"host,omitempty"`
	Episode      string `json:"episode,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type MusicMeta struct {
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	URL    string `json:"url,omitempty"`
}

type CoupleMeta struct {
	ScheduledDate calendar.Date `json:"scheduledDate,omitempty"`
	Location      string        `json:"location,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

type TravelMeta struct {
	Destination string        `json:"destination,omitempty"`
	StartDate   calendar.Date `json:"startDate,omitempty"`
	EndDate     calendar.Date `json:"endDate,omitempty"`
	Budget      float64       `json:"budget,omitempty"`
}

type PrayerVideoMeta struct {
	URL          string `json:"url,omitempty"`
	VideoID      string `json:"videoId,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// GenericMeta carries metadata for categories without a dedicated schema.
type GenericMeta struct {
	Kind   string         `json:"-"`
	Fields map[string]any `json:"-"`
}

func (MovieMeta) Category() string       { return CategoryMovies }
func (BibleMeta) Category() string       { return CategoryBible }
func (ShoppingMeta) Category() string    { return CategoryShopping }
func (PrayerMeta) Category() string      { return CategoryPrayer }
func (PodcastMeta) Category() string     { return CategoryPodcast }
func (MusicMeta) Category() string       { return CategoryMusic }
func (CoupleMeta) Category() string      { return CategoryCouple }
func (TravelMeta) Category() string      { return CategoryTravel }
func (PrayerVideoMeta) Category() string { return CategoryPrayerVideo }
func (m GenericMeta) Category() string   { return m.Kind }

func (m MovieMeta) Scheduled() calendar.Date  { return m.ScheduledDate }
func (m BibleMeta) Scheduled() calendar.Date  { return m.ScheduledDate }
func (m CoupleMeta) Scheduled() calendar.Date { return m.ScheduledDate }

func (m GenericMeta) MarshalJSON() ([]byte, error) {
	if m.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.Fields)
}

func newMeta(category string) Meta {
	switch category {
	case CategoryMovies:
		return &MovieMeta{}
	case CategoryBible:
		return &BibleMeta{}
	case CategoryShopping:
		return &ShoppingMeta{}
	case CategoryPrayer:
		return &PrayerMeta{}
	case CategoryPodcast:
		return &PodcastMeta{}
	case CategoryMusic:
		return &MusicMeta{}
	case CategoryCouple:
		return &CoupleMeta{}
	case CategoryTravel:
		return &TravelMeta{}
	case CategoryPrayerVideo:
		return &PrayerVideoMeta{}
	default:
		return nil
	}
}

// DecodeMeta decodes raw strictly for the given category. Unknown fields
// and malformed dates are rejected. A nil result means no meta.
func DecodeMeta(category string, raw []byte) (Meta, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	target := newMeta(category)
	if target == nil {
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
		}
		return GenericMeta{Kind: category, Fields: fields}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidMeta)
	}
	meta := deref(target)
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// ParseMeta decodes a stored meta string leniently: unknown fields are
// ignored and unreadable content yields nil.
func ParseMeta(category, raw string) Meta {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	target := newMeta(category)
	if target == nil {
		fields := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil
		}
		return GenericMeta{Kind: category, Fields: fields}
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return nil
	}
	return deref(target)
}

// EncodeMeta returns the stored form of meta, nil when there is none.
func EncodeMeta(meta Meta) (*string, error) {
	if meta == nil {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	encoded := string(data)
	return &encoded, nil
}

// ScheduledDate reports the day an item is planned for, if any.
func ScheduledDate(item Item) calendar.Date {
	if scheduled, ok := item.DecodedMeta().(Scheduled); ok {
		return scheduled.Scheduled()
	}
	return ""
}

func deref(meta Meta) Meta {
	switch m := meta.(type) {
	case *MovieMeta:
		return *m
	case *BibleMeta:
		return *m
	case *ShoppingMeta:
		return *m
	case *PrayerMeta:
		return *m
	case *PodcastMeta:
		return *m
	case *MusicMeta:
		return *m
	case *CoupleMeta:
		return *m
	case *TravelMeta:
		return *m
	case *PrayerVideoMeta:
		return *m
	default:
		return meta
	}
}

func validateMeta(meta Meta) error {
	switch m := meta.(type) {
	case MovieMeta:
		if m.Rating < 0 || m.Rating > 10 {
			return fmt.Errorf("%w: rating must be between 0 and 10", ErrInvalidMeta)
		}
	case BibleMeta:
		if m.Chapter < 0 {
			return fmt.Errorf("%w: chapter must be positive", ErrInvalidMeta)
		}
	case ShoppingMeta:
		if m.Quantity < 0 || m.Price < 0 {
			return fmt.Errorf("%w: quantity and price must not be negative", ErrInvalidMeta)
		}
	case TravelMeta:
		if m.Budget < 0 {
			return fmt.Errorf("%w: budget must not be negative", ErrInvalidMeta)
		}
		if !m.StartDate.IsZero() && !m.EndDate.IsZero() && m.EndDate < m.StartDate {
			return fmt.Errorf("%w: endDate before startDate", ErrInvalidMeta)
		}
	}
	return nil
}
