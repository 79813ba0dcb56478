package group

import (
	"time"

	"alianca-go/internal/domain/profile"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Group struct {
	ID        string    `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Code      string    `json:"code" gorm:"column:code;size:6;not null;uniqueIndex"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by;type:uuid;not null"`
	AvatarURL *string   `json:"avatar_url" gorm:"column:avatar_url"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

// Member is one row per (group, user). The store rejects duplicates.
type Member struct {
	GroupID  string    `json:"group_id" gorm:"column:group_id;type:uuid;primaryKey"`
	UserID   string    `json:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	Role     string    `json:"role" gorm:"column:role;type:varchar(16);not null"`
	JoinedAt time.Time `json:"joined_at" gorm:"column:joined_at"`
}

type MemberWithProfile struct {
	Member
	Profile *profile.Profile `json:"profile"`
}

// Details is a group with its members joined to their profiles.
type Details struct {
	Group   Group               `json:"group"`
	Members []MemberWithProfile `json:"members"`
}

type UpdateInput struct {
	Name *string
}

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}
