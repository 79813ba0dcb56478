package tables

import (
	"context"

	profiledomain "alianca-go/internal/domain/profile"
	"alianca-go/internal/gateway"
)

type ProfileRepository struct {
	gw gateway.Gateway
}

func NewProfileRepository(gw gateway.Gateway) *ProfileRepository {
	return &ProfileRepository{gw: gw}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*profiledomain.Profile, error) {
	profile, ok, err := first[profiledomain.Profile](ctx, r.gw, TableProfiles, gateway.Eq("id", userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, profiledomain.ErrProfileNotFound
	}
	return profile, nil
}

func (r *ProfileRepository) ListProfilesByIDs(ctx context.Context, userIDs []string) ([]profiledomain.Profile, error) {
	if len(userIDs) == 0 {
		return []profiledomain.Profile{}, nil
	}
	return selectAll[profiledomain.Profile](ctx, r.gw, TableProfiles, gateway.Where(gateway.In("id", userIDs)))
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *profiledomain.Profile) error {
	return r.gw.Upsert(ctx, TableProfiles, profile, "id")
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID string, changes map[string]any) error {
	affected, err := r.gw.Update(ctx, TableProfiles, []gateway.Filter{gateway.Eq("id", userID)}, changes)
	if err != nil {
		return err
	}
	if affected == 0 {
		return profiledomain.ErrProfileNotFound
	}
	return nil
}
