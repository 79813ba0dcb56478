package profile

import "context"

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListProfilesByIDs(ctx context.Context, userIDs []string) ([]Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, userID string, changes map[string]any) error
}
