package group

import (
	"context"
	"errors"
	"sort"
)

// ResolveGroup returns the caller's current group. Memberships are walked
// most recently joined first and the first group that still exists wins,
// so orphaned membership rows are skipped.
func (s *Service) ResolveGroup(ctx context.Context, userID string) (*Group, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if cached, ok := s.cache.GetByUserID(ctx, userID); ok {
		return cached, nil
	}

	memberships, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memberships, func(i, j int) bool {
		return memberships[i].JoinedAt.After(memberships[j].JoinedAt)
	})

	for _, membership := range memberships {
		group, err := s.repo.GetGroup(ctx, membership.GroupID)
		if errors.Is(err, ErrGroupNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.cache.SetByUserID(ctx, userID, group, s.cacheTTL)
		return group, nil
	}

	return nil, ErrNoGroup
}

func (s *Service) ResolveGroupID(ctx context.Context, userID string) (string, error) {
	group, err := s.ResolveGroup(ctx, userID)
	if err != nil {
		return "", err
	}
	return group.ID, nil
}

func (s *Service) invalidate(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		s.cache.DeleteByUserID(ctx, userID)
	}
}

func (s *Service) invalidateMembers(ctx context.Context, members []Member) {
	for _, member := range members {
		s.cache.DeleteByUserID(ctx, member.UserID)
	}
}
