package activity

import (
	"encoding/json"
	"time"
)

const (
	CategoryMovies      = "movies"
	CategoryBible       = "bible"
	CategoryShopping    = "shopping"
	CategoryPrayer      = "prayer"
	CategoryPodcast     = "podcast"
	CategoryMusic       = "music"
	CategoryCouple      = "couple"
	CategoryTravel      = "travel"
	CategoryPrayerVideo = "prayer_video"
)

// Item is stored as the remote row. Meta holds the JSON encoding of the
// category's Meta variant.
type Item struct {
	ID        string    `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	GroupID   string    `json:"group_id" gorm:"column:group_id;type:uuid;index;not null"`
	Category  string    `json:"category" gorm:"column:category;index;not null"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Completed bool      `json:"completed" gorm:"column:completed;not null;default:false"`
	Meta      *string   `json:"meta" gorm:"column:meta"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

// DecodedMeta returns the lenient decoding of the stored meta.
func (i Item) DecodedMeta() Meta {
	if i.Meta == nil {
		return nil
	}
	return ParseMeta(i.Category, *i.Meta)
}

type AddInput struct {
	Category string
	Name     string
	Meta     json.RawMessage
}

// UpdateInput is a partial update. A Meta of JSON null clears the meta.
type UpdateInput struct {
	Name      *string
	Completed *bool
	Meta      json.RawMessage
}
