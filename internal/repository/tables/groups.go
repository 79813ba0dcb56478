package tables

import (
	"context"
	"errors"

	groupdomain "alianca-go/internal/domain/group"
	"alianca-go/internal/gateway"
)

type GroupRepository struct {
	gw gateway.Gateway
}

func NewGroupRepository(gw gateway.Gateway) *GroupRepository {
	return &GroupRepository{gw: gw}
}

func (r *GroupRepository) CreateGroup(ctx context.Context, group *groupdomain.Group) error {
	return r.gw.Insert(ctx, TableGroups, group)
}

func (r *GroupRepository) GetGroup(ctx context.Context, groupID string) (*groupdomain.Group, error) {
	group, ok, err := first[groupdomain.Group](ctx, r.gw, TableGroups, gateway.Eq("id", groupID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, groupdomain.ErrGroupNotFound
	}
	return group, nil
}

func (r *GroupRepository) GetGroupByCode(ctx context.Context, code string) (*groupdomain.Group, error) {
	group, ok, err := first[groupdomain.Group](ctx, r.gw, TableGroups, gateway.Eq("code", code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, groupdomain.ErrGroupCodeNotFound
	}
	return group, nil
}

func (r *GroupRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	count, err := r.gw.Count(ctx, TableGroups, []gateway.Filter{gateway.Eq("code", code)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GroupRepository) UpdateGroup(ctx context.Context, groupID string, changes map[string]any) error {
	affected, err := r.gw.Update(ctx, TableGroups, []gateway.Filter{gateway.Eq("id", groupID)}, changes)
	if err != nil {
		return err
	}
	if affected == 0 {
		return groupdomain.ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := r.gw.Delete(ctx, TableGroups, []gateway.Filter{gateway.Eq("id", groupID)})
	return err
}

func (r *GroupRepository) AddMember(ctx context.Context, member *groupdomain.Member) error {
	err := r.gw.Insert(ctx, TableGroupMembers, member)
	if errors.Is(err, gateway.ErrConflict) {
		return groupdomain.ErrAlreadyMember
	}
	return err
}

func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (*groupdomain.Member, error) {
	member, ok, err := first[groupdomain.Member](ctx, r.gw, TableGroupMembers,
		gateway.Eq("group_id", groupID),
		gateway.Eq("user_id", userID),
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, groupdomain.ErrMemberNotFound
	}
	return member, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]groupdomain.Member, error) {
	query := gateway.Where(gateway.Eq("group_id", groupID)).OrderBy("joined_at", false)
	return selectAll[groupdomain.Member](ctx, r.gw, TableGroupMembers, query)
}

func (r *GroupRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]groupdomain.Member, error) {
	query := gateway.Where(gateway.Eq("user_id", userID)).OrderBy("joined_at", true)
	return selectAll[groupdomain.Member](ctx, r.gw, TableGroupMembers, query)
}

func (r *GroupRepository) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	affected, err := r.gw.Update(ctx, TableGroupMembers,
		[]gateway.Filter{gateway.Eq("group_id", groupID), gateway.Eq("user_id", userID)},
		map[string]any{"role": role},
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return groupdomain.ErrMemberNotFound
	}
	return nil
}

func (r *GroupRepository) DeleteMember(ctx context.Context, groupID, userID string) error {
	_, err := r.gw.Delete(ctx, TableGroupMembers,
		[]gateway.Filter{gateway.Eq("group_id", groupID), gateway.Eq("user_id", userID)},
	)
	return err
}

func (r *GroupRepository) DeleteMembersByGroup(ctx context.Context, groupID string) error {
	_, err := r.gw.Delete(ctx, TableGroupMembers, []gateway.Filter{gateway.Eq("group_id", groupID)})
	return err
}

func (r *GroupRepository) CountMembers(ctx context.Context, groupID string) (int64, error) {
	return r.gw.Count(ctx, TableGroupMembers, []gateway.Filter{gateway.Eq("group_id", groupID)})
}
