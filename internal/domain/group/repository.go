package group

import (
	"context"

	"alianca-go/internal/domain/profile"
)

// Repository maps group operations onto the remote tables. AddMember
// returns ErrAlreadyMember when the (group, user) row already exists.
type Repository interface {
	CreateGroup(ctx context.Context, group *Group) error
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	GetGroupByCode(ctx context.Context, code string) (*Group, error)
	IsCodeTaken(ctx context.Context, code string) (bool, error)
	UpdateGroup(ctx context.Context, groupID string, changes map[string]any) error
	DeleteGroup(ctx context.Context, groupID string) error

	AddMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, groupID, userID string) (*Member, error)
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]Member, error)
	UpdateMemberRole(ctx context.Context, groupID, userID, role string) error
	DeleteMember(ctx context.Context, groupID, userID string) error
	DeleteMembersByGroup(ctx context.Context, groupID string) error
	CountMembers(ctx context.Context, groupID string) (int64, error)
}

type ProfileLookup interface {
	ListByUserIDs(ctx context.Context, userIDs []string) ([]profile.Profile, error)
}
