package group

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"alianca-go/internal/domain/profile"
)

type fakeGroupRepo struct {
	groups  map[string]*Group
	members map[string]*Member
	codes   map[string]string
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[string]*Group),
		members: make(map[string]*Member),
		codes:   make(map[string]string),
	}
}

func memberKey(groupID, userID string) string {
	return groupID + "/" + userID
}

func (r *fakeGroupRepo) addGroup(id, code string) {
	r.groups[id] = &Group{ID: id, Name: "Casa", Code: code, CreatedBy: "owner"}
	r.codes[code] = id
}

func (r *fakeGroupRepo) addMember(groupID, userID, role string, joinedAt time.Time) {
	r.members[memberKey(groupID, userID)] = &Member{GroupID: groupID, UserID: userID, Role: role, JoinedAt: joinedAt}
}

func (r *fakeGroupRepo) CreateGroup(ctx context.Context, group *Group) error {
	copied := *group
	r.groups[group.ID] = &copied
	r.codes[group.Code] = group.ID
	return nil
}

func (r *fakeGroupRepo) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (r *fakeGroupRepo) GetGroupByCode(ctx context.Context, code string) (*Group, error) {
	id, ok := r.codes[code]
	if !ok {
		return nil, ErrGroupCodeNotFound
	}
	return r.GetGroup(ctx, id)
}

func (r *fakeGroupRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	_, ok := r.codes[code]
	return ok, nil
}

func (r *fakeGroupRepo) UpdateGroup(ctx context.Context, groupID string, changes map[string]any) error {
	group, ok := r.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	if name, ok := changes["name"].(string); ok {
		group.Name = name
	}
	if avatar, ok := changes["avatar_url"].(string); ok {
		group.AvatarURL = &avatar
	}
	return nil
}

func (r *fakeGroupRepo) DeleteGroup(ctx context.Context, groupID string) error {
	if group, ok := r.groups[groupID]; ok {
		delete(r.codes, group.Code)
	}
	delete(r.groups, groupID)
	return nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, member *Member) error {
	key := memberKey(member.GroupID, member.UserID)
	if _, ok := r.members[key]; ok {
		return ErrAlreadyMember
	}
	copied := *member
	r.members[key] = &copied
	return nil
}

func (r *fakeGroupRepo) GetMember(ctx context.Context, groupID, userID string) (*Member, error) {
	member, ok := r.members[memberKey(groupID, userID)]
	if !ok {
		return nil, ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeGroupRepo) ListMembers(ctx context.Context, groupID string) ([]Member, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if member.GroupID == groupID {
			result = append(result, *member)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (r *fakeGroupRepo) ListMembershipsByUser(ctx context.Context, userID string) ([]Member, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if member.UserID == userID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeGroupRepo) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	member, ok := r.members[memberKey(groupID, userID)]
	if !ok {
		return ErrMemberNotFound
	}
	member.Role = role
	return nil
}

func (r *fakeGroupRepo) DeleteMember(ctx context.Context, groupID, userID string) error {
	delete(r.members, memberKey(groupID, userID))
	return nil
}

func (r *fakeGroupRepo) DeleteMembersByGroup(ctx context.Context, groupID string) error {
	for key, member := range r.members {
		if member.GroupID == groupID {
			delete(r.members, key)
		}
	}
	return nil
}

func (r *fakeGroupRepo) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	for _, member := range r.members {
		if member.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

type fakeProfiles struct {
	profiles map[string]profile.Profile
	calls    int
}

func (p *fakeProfiles) ListByUserIDs(ctx context.Context, userIDs []string) ([]profile.Profile, error) {
	p.calls++
	result := make([]profile.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if item, ok := p.profiles[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

type recordingCache struct {
	entries map[string]*Group
	deletes []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]*Group)}
}

func (c *recordingCache) GetByUserID(ctx context.Context, userID string) (*Group, bool) {
	group, ok := c.entries[userID]
	return group, ok
}

func (c *recordingCache) SetByUserID(ctx context.Context, userID string, group *Group, ttl time.Duration) {
	c.entries[userID] = group
}

func (c *recordingCache) DeleteByUserID(ctx context.Context, userID string) {
	delete(c.entries, userID)
	c.deletes = append(c.deletes, userID)
}

func (c *recordingCache) Clear(ctx context.Context) {
	c.entries = make(map[string]*Group)
}

func newTestService(repo *fakeGroupRepo, opts ...Option) *Service {
	return NewService(repo, &fakeProfiles{}, opts...)
}

func TestCreateGroupSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := newTestService(repo)

	result, err := svc.CreateGroup(context.Background(), "user-1", "  Casa  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "Casa" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.CreatedBy != "user-1" {
		t.Fatalf("expected creator user-1, got %q", result.CreatedBy)
	}
	if len(result.Code) != 6 {
		t.Fatalf("expected code length 6, got %q", result.Code)
	}
	member, ok := repo.members[memberKey(result.ID, "user-1")]
	if !ok {
		t.Fatalf("expected member created")
	}
	if member.Role != RoleAdmin {
		t.Fatalf("expected admin role, got %q", member.Role)
	}
}

func TestCreateGroupRejectsEmptyName(t *testing.T) {
	svc := newTestService(newFakeGroupRepo())
	_, err := svc.CreateGroup(context.Background(), "user-1", " <b></b> ")
	if !errors.Is(err, ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}
}

func TestCreateGroupAlreadyInGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "AAAAAA")
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())

	svc := newTestService(repo)
	_, err := svc.CreateGroup(context.Background(), "user-1", "Outra")
	if !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup, got %v", err)
	}
}

func TestJoinGroupSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "owner", RoleAdmin, time.Now())

	svc := newTestService(repo, WithMaxMembers(2))
	result, err := svc.JoinGroup(context.Background(), "user-1", " zxcvbn ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ID != "grp-1" {
		t.Fatalf("expected group grp-1, got %s", result.ID)
	}
	member := repo.members[memberKey("grp-1", "user-1")]
	if member == nil || member.Role != RoleMember {
		t.Fatalf("expected member role, got %+v", member)
	}
}

func TestJoinGroupTwice(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")

	svc := newTestService(repo)
	if _, err := svc.JoinGroup(context.Background(), "user-1", "ZXCVBN"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, err := svc.JoinGroup(context.Background(), "user-1", "ZXCVBN")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	count, _ := repo.CountMembers(context.Background(), "grp-1")
	if count != 1 {
		t.Fatalf("expected one membership row, got %d", count)
	}
}

func TestJoinGroupFull(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "a", RoleAdmin, time.Now())
	repo.addMember("grp-1", "b", RoleMember, time.Now())

	svc := newTestService(repo, WithMaxMembers(2))
	_, err := svc.JoinGroup(context.Background(), "c", "ZXCVBN")
	if !errors.Is(err, ErrGroupFull) {
		t.Fatalf("expected ErrGroupFull, got %v", err)
	}
}

func TestJoinGroupCodeNotFound(t *testing.T) {
	svc := newTestService(newFakeGroupRepo())
	_, err := svc.JoinGroup(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrGroupCodeNotFound) {
		t.Fatalf("expected ErrGroupCodeNotFound, got %v", err)
	}
}

func TestResolveGroupPrefersNewestMembership(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("old", "AAAAAA")
	repo.addGroup("new", "BBBBBB")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.addMember("old", "user-1", RoleAdmin, base)
	repo.addMember("new", "user-1", RoleMember, base.Add(time.Hour))

	svc := newTestService(repo)
	id, err := svc.ResolveGroupID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "new" {
		t.Fatalf("expected newest group, got %s", id)
	}
}

func TestResolveGroupSkipsOrphanedMembership(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("live", "AAAAAA")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.addMember("live", "user-1", RoleAdmin, base)
	repo.addMember("gone", "user-1", RoleMember, base.Add(time.Hour))

	svc := newTestService(repo)
	id, err := svc.ResolveGroupID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "live" {
		t.Fatalf("expected orphan skipped, got %s", id)
	}
}

func TestResolveGroupNoGroup(t *testing.T) {
	svc := newTestService(newFakeGroupRepo())
	if _, err := svc.ResolveGroupID(context.Background(), "user-1"); !errors.Is(err, ErrNoGroup) {
		t.Fatalf("expected ErrNoGroup, got %v", err)
	}
	if _, err := svc.ResolveGroupID(context.Background(), ""); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestResolveGroupUsesCacheAndJoinInvalidates(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "owner", RoleAdmin, time.Now())
	cache := newRecordingCache()

	svc := newTestService(repo, WithCache(cache, time.Minute))
	if _, err := svc.ResolveGroupID(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := cache.entries["owner"]; !ok {
		t.Fatalf("expected resolution cached")
	}

	if _, err := svc.JoinGroup(context.Background(), "user-1", "ZXCVBN"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cache.deletes) == 0 || cache.deletes[len(cache.deletes)-1] != "user-1" {
		t.Fatalf("expected joiner invalidated, got %v", cache.deletes)
	}
}

func TestGetGroupDetailsJoinsProfiles(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "a", RoleAdmin, time.Now())
	repo.addMember("grp-1", "b", RoleMember, time.Now())
	profiles := &fakeProfiles{profiles: map[string]profile.Profile{"a": {ID: "a", Name: "Ana"}}}

	svc := NewService(repo, profiles)
	details, err := svc.GetGroupDetails(context.Background(), "grp-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(details.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(details.Members))
	}
	if details.Members[0].Profile == nil || details.Members[0].Profile.Name != "Ana" {
		t.Fatalf("expected profile for a, got %+v", details.Members[0].Profile)
	}
	if details.Members[1].Profile != nil {
		t.Fatalf("expected no profile for b")
	}
	if profiles.calls != 1 {
		t.Fatalf("expected one profile lookup, got %d", profiles.calls)
	}
}

func TestUpdateGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())

	svc := newTestService(repo)
	name := "Nosso Lar"
	result, err := svc.UpdateGroup(context.Background(), "user-1", "grp-1", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "Nosso Lar" {
		t.Fatalf("expected updated name, got %q", result.Name)
	}

	_, err = svc.UpdateGroup(context.Background(), "stranger", "grp-1", UpdateInput{Name: &name})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound for non-member, got %v", err)
	}
}

func TestLeaveGroupAdminPromotesEarliestMember(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.addMember("grp-1", "admin", RoleAdmin, base)
	repo.addMember("grp-1", "late", RoleMember, base.Add(2*time.Hour))
	repo.addMember("grp-1", "early", RoleMember, base.Add(time.Hour))

	svc := newTestService(repo)
	if err := svc.LeaveGroup(context.Background(), "admin", "grp-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.groups["grp-1"] == nil {
		t.Fatalf("group should not be deleted")
	}
	if repo.members[memberKey("grp-1", "early")].Role != RoleAdmin {
		t.Fatalf("expected early member promoted")
	}
	if repo.members[memberKey("grp-1", "late")].Role != RoleMember {
		t.Fatalf("expected late member unchanged")
	}
	if _, ok := repo.members[memberKey("grp-1", "admin")]; ok {
		t.Fatalf("expected admin membership deleted")
	}
}

func TestLeaveGroupSolo(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())

	svc := newTestService(repo)
	if err := svc.LeaveGroup(context.Background(), "admin", "grp-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.groups["grp-1"]; !ok {
		t.Fatalf("expected group to remain")
	}
	if _, err := svc.ResolveGroupID(context.Background(), "admin"); !errors.Is(err, ErrNoGroup) {
		t.Fatalf("expected ErrNoGroup after leaving, got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())

	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.UpdateMemberRole(ctx, "admin", "grp-1", "user-1", "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.UpdateMemberRole(ctx, "user-1", "grp-1", "admin", RoleMember); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := svc.UpdateMemberRole(ctx, "admin", "grp-1", "admin", RoleMember); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	member, err := svc.UpdateMemberRole(ctx, "admin", "grp-1", "user-1", "ADMIN")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if member.Role != RoleAdmin || repo.members[memberKey("grp-1", "user-1")].Role != RoleAdmin {
		t.Fatalf("expected user-1 promoted, got %+v", member)
	}
}

func TestRemoveMemberNotAdmin(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())

	svc := newTestService(repo)
	err := svc.RemoveMember(context.Background(), "user-1", "grp-1", "admin")
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestRemoveMemberCannotRemoveSelf(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())

	svc := newTestService(repo)
	err := svc.RemoveMember(context.Background(), "admin", "grp-1", "admin")
	if !errors.Is(err, ErrCannotRemoveSelf) {
		t.Fatalf("expected ErrCannotRemoveSelf, got %v", err)
	}
}

func TestRemoveMemberSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())
	cache := newRecordingCache()

	svc := newTestService(repo, WithCache(cache, time.Minute))
	if err := svc.RemoveMember(context.Background(), "admin", "grp-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members[memberKey("grp-1", "user-1")]; ok {
		t.Fatalf("expected member removed")
	}
	if len(cache.deletes) != 1 || cache.deletes[0] != "user-1" {
		t.Fatalf("expected removed member invalidated, got %v", cache.deletes)
	}
}

func TestDeleteGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "admin", RoleAdmin, time.Now())
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())

	svc := newTestService(repo)
	if err := svc.DeleteGroup(context.Background(), "admin", "grp-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.groups) != 0 || len(repo.members) != 0 {
		t.Fatalf("expected group and members deleted, got %d groups %d members", len(repo.groups), len(repo.members))
	}
}

type fakeStore struct {
	paths []string
}

func (s *fakeStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	s.paths = append(s.paths, objectPath)
	return "https://cdn.example.com/" + objectPath, nil
}

func TestUploadGroupAvatar(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.addGroup("grp-1", "ZXCVBN")
	repo.addMember("grp-1", "user-1", RoleMember, time.Now())
	ctx := context.Background()

	if _, err := newTestService(repo).UploadGroupAvatar(ctx, "user-1", "grp-1", Upload{}); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}

	store := &fakeStore{}
	svc := newTestService(repo, WithAvatarStore(store))
	svc.now = func() time.Time { return time.UnixMilli(1000) }

	if _, err := svc.UploadGroupAvatar(ctx, "user-1", "grp-1", Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("x")}); !errors.Is(err, ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}

	result, err := svc.UploadGroupAvatar(ctx, "user-1", "grp-1", Upload{Filename: "foto.png", ContentType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AvatarURL == nil || len(store.paths) != 1 {
		t.Fatalf("expected avatar stored, got %+v", result.AvatarURL)
	}
	want := "https://cdn.example.com/" + store.paths[0] + "?t=1000"
	if *result.AvatarURL != want {
		t.Fatalf("expected %s, got %s", want, *result.AvatarURL)
	}
}
