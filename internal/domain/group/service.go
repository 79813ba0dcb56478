package group

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"alianca-go/internal/storage"
	"alianca-go/pkg/sanitize"
	"github.com/google/uuid"
)

const (
	groupCodeLength   = 6
	groupCodeAttempts = 10
	maxNameLength     = 80
)

type Service struct {
	repo       Repository
	profiles   ProfileLookup
	avatars    storage.Store
	cache      Cache
	cacheTTL   time.Duration
	maxMembers int
	now        func() time.Time
}

type Option func(*Service)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

func WithAvatarStore(store storage.Store) Option {
	return func(s *Service) {
		s.avatars = store
	}
}

// WithMaxMembers caps group size; zero disables the cap.
func WithMaxMembers(max int) Option {
	return func(s *Service) {
		s.maxMembers = max
	}
}

func NewService(repo Repository, profiles ProfileLookup, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		profiles: profiles,
		cache:    noopCache{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*Group, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.ResolveGroup(ctx, userID); err == nil {
		return nil, ErrAlreadyInGroup
	} else if !errors.Is(err, ErrNoGroup) {
		return nil, err
	}

	code, err := generateUniqueCode(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	group := Group{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		CreatedBy: userID,
		CreatedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, &group); err != nil {
		return nil, err
	}

	member := Member{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     RoleAdmin,
		JoinedAt: now,
	}
	if err := s.repo.AddMember(ctx, &member); err != nil {
		if cleanupErr := s.repo.DeleteGroup(ctx, group.ID); cleanupErr != nil {
			return nil, errors.Join(err, fmt.Errorf("remove group without admin: %w", cleanupErr))
		}
		return nil, err
	}

	s.invalidate(ctx, userID)
	return &group, nil
}

func (s *Service) JoinGroup(ctx context.Context, userID, code string) (*Group, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	code = normalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidGroup)
	}

	group, err := s.repo.GetGroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	current, err := s.ResolveGroup(ctx, userID)
	switch {
	case err == nil && current.ID == group.ID:
		return nil, ErrAlreadyMember
	case err == nil:
		return nil, ErrAlreadyInGroup
	case !errors.Is(err, ErrNoGroup):
		return nil, err
	}

	if s.maxMembers > 0 {
		count, err := s.repo.CountMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(s.maxMembers) {
			return nil, ErrGroupFull
		}
	}

	member := Member{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     RoleMember,
		JoinedAt: s.now().UTC(),
	}
	if err := s.repo.AddMember(ctx, &member); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return group, nil
}

func (s *Service) GetGroupByCode(ctx context.Context, code string) (*Group, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, ErrGroupCodeNotFound
	}
	return s.repo.GetGroupByCode(ctx, code)
}

// GetGroupDetails loads the group, its members and their profiles in three
// calls and joins them here.
func (s *Service) GetGroupDetails(ctx context.Context, groupID string) (*Details, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, member.UserID)
	}
	profiles, err := s.profiles.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load member profiles: %w", err)
	}
	byID := make(map[string]int, len(profiles))
	for i, p := range profiles {
		byID[p.ID] = i
	}

	details := &Details{Group: *group, Members: make([]MemberWithProfile, 0, len(members))}
	for _, member := range members {
		item := MemberWithProfile{Member: member}
		if idx, ok := byID[member.UserID]; ok {
			p := profiles[idx]
			item.Profile = &p
		}
		details.Members = append(details.Members, item)
	}
	return details, nil
}

func (s *Service) UpdateGroup(ctx context.Context, userID, groupID string, input UpdateInput) (*Group, error) {
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
	}
	if len(changes) > 0 {
		if err := s.repo.UpdateGroup(ctx, groupID, changes); err != nil {
			return nil, err
		}
		s.invalidateGroup(ctx, groupID)
	}
	return s.repo.GetGroup(ctx, groupID)
}

// LeaveGroup removes the caller's membership. When the last admin leaves a
// group that still has members, the longest standing member is promoted.
func (s *Service) LeaveGroup(ctx context.Context, userID, groupID string) error {
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if member.Role == RoleAdmin {
		members, err := s.repo.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		others := make([]Member, 0, len(members))
		otherAdmin := false
		for _, m := range members {
			if m.UserID == userID {
				continue
			}
			others = append(others, m)
			if m.Role == RoleAdmin {
				otherAdmin = true
			}
		}
		if !otherAdmin && len(others) > 0 {
			sort.SliceStable(others, func(i, j int) bool {
				return others[i].JoinedAt.Before(others[j].JoinedAt)
			})
			if err := s.repo.UpdateMemberRole(ctx, groupID, others[0].UserID, RoleAdmin); err != nil {
				return err
			}
		}
	}

	if err := s.repo.DeleteMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, actorID, groupID, memberID, role string) (*Member, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	target, err := s.repo.GetMember(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	if target.Role == RoleAdmin && role == RoleMember {
		admins, err := s.countAdmins(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	if err := s.repo.UpdateMemberRole(ctx, groupID, memberID, role); err != nil {
		return nil, err
	}
	target.Role = role
	return target, nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, memberID string) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	if memberID == actorID {
		return ErrCannotRemoveSelf
	}
	if _, err := s.repo.GetMember(ctx, groupID, memberID); err != nil {
		return err
	}

	if err := s.repo.DeleteMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.invalidate(ctx, memberID)
	return nil
}

// DeleteGroup removes membership rows first and then the group row. The two
// deletes are not atomic; a leftover group without members is harmless
// because resolution only follows membership rows.
func (s *Service) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMembersByGroup(ctx, groupID); err != nil {
		return err
	}
	s.invalidateMembers(ctx, members)

	return s.repo.DeleteGroup(ctx, groupID)
}

func (s *Service) UploadGroupAvatar(ctx context.Context, userID, groupID string, upload Upload) (*Group, error) {
	if s.avatars == nil {
		return nil, ErrStorageDisabled
	}
	if err := storage.ValidateImage(upload.ContentType, len(upload.Data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGroup, err)
	}
	if _, err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	objectPath := storage.ObjectPath("groups/"+groupID, upload.Filename, upload.ContentType)
	publicURL, err := s.avatars.Upload(ctx, objectPath, upload.ContentType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("upload group avatar: %w", err)
	}

	avatarURL := storage.WithCacheBuster(publicURL, s.now())
	if err := s.repo.UpdateGroup(ctx, groupID, map[string]any{"avatar_url": avatarURL}); err != nil {
		return nil, err
	}
	s.invalidateGroup(ctx, groupID)
	return s.repo.GetGroup(ctx, groupID)
}

func (s *Service) requireMember(ctx context.Context, groupID, userID string) (*Member, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, ErrGroupNotFound
	}
	return member, err
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID string) error {
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role != RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

func (s *Service) countAdmins(ctx context.Context, groupID string) (int, error) {
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return 0, err
	}
	admins := 0
	for _, member := range members {
		if member.Role == RoleAdmin {
			admins++
		}
	}
	return admins, nil
}

func (s *Service) invalidateGroup(ctx context.Context, groupID string) {
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		s.cache.Clear(ctx)
		return
	}
	s.invalidateMembers(ctx, members)
}

func normalizeName(name string) (string, error) {
	name = sanitize.Text(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidGroup)
	}
	if len([]rune(name)) > maxNameLength {
		return "", fmt.Errorf("%w: name is too long", ErrInvalidGroup)
	}
	return name, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < groupCodeAttempts; i++ {
		code, err := generateCode(groupCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
