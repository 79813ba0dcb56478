package profile

import (
	"time"

	"alianca-go/pkg/calendar"
)

type Profile struct {
	ID           string         `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"column:name;not null"`
	Email        *string        `json:"email" gorm:"column:email"`
	Age          *int           `json:"age" gorm:"column:age"`
	City         *string        `json:"city" gorm:"column:city"`
	State        *string        `json:"state" gorm:"column:state"`
	DatingSince  *calendar.Date `json:"dating_since" gorm:"column:dating_since;type:date"`
	MarriedSince *calendar.Date `json:"married_since" gorm:"column:married_since;type:date"`
	AvatarURL    *string        `json:"avatar_url" gorm:"column:avatar_url"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

type OnboardInput struct {
	Name         string
	Email        *string
	Age          *int
	City         *string
	State        *string
	DatingSince  *calendar.Date
	MarriedSince *calendar.Date
}

// UpdateInput holds optional changes; nil fields are left untouched.
type UpdateInput struct {
	Name         *string
	Age          *int
	City         *string
	State        *string
	DatingSince  *calendar.Date
	MarriedSince *calendar.Date
}

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
