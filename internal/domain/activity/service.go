package activity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"alianca-go/pkg/sanitize"
	"github.com/google/uuid"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	maxNameLength      = 200
)

var categoryPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)

type Service struct {
	repo     Repository
	groups   GroupResolver
	enricher Enricher
	now      func() time.Time
}

func NewService(repo Repository, groups GroupResolver, enricher Enricher) *Service {
	return &Service{
		repo:     repo,
		groups:   groups,
		enricher: enricher,
		now:      time.Now,
	}
}

// GetItems lists a category oldest first.
func (s *Service) GetItems(ctx context.Context, userID, category string) ([]Item, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCategory(ctx, groupID, category)
}

// GetRecentActivity lists items of every category newest first.
func (s *Service) GetRecentActivity(ctx context.Context, userID string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecent(ctx, groupID, limit)
}

func (s *Service) AddItem(ctx context.Context, userID string, input AddInput) (*Item, error) {
	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	meta, err := DecodeMeta(category, input.Meta)
	if err != nil {
		return nil, err
	}

	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.enricher != nil {
		meta = s.enricher.Enrich(ctx, category, name, meta)
	}
	encoded, err := EncodeMeta(meta)
	if err != nil {
		return nil, err
	}

	item := Item{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Category:  category,
		Name:      name,
		Completed: false,
		Meta:      encoded,
		CreatedBy: userID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ToggleItem writes the negation of currentCompleted. The caller's view of
// the flag is trusted, so a stale value flips the wrong way.
func (s *Service) ToggleItem(ctx context.Context, userID, id string, currentCompleted bool) (*Item, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	affected, err := s.repo.UpdateItem(ctx, groupID, id, map[string]any{"completed": !currentCompleted})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}
	return s.repo.GetItem(ctx, groupID, id)
}

func (s *Service) UpdateItem(ctx context.Context, userID, id string, input UpdateInput) (*Item, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, groupID, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
		item.Name = name
	}
	if input.Completed != nil {
		changes["completed"] = *input.Completed
		item.Completed = *input.Completed
	}
	if input.Meta != nil {
		meta, err := DecodeMeta(item.Category, input.Meta)
		if err != nil {
			return nil, err
		}
		encoded, err := EncodeMeta(meta)
		if err != nil {
			return nil, err
		}
		changes["meta"] = encoded
		item.Meta = encoded
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidItem)
	}

	affected, err := s.repo.UpdateItem(ctx, groupID, id, changes)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, userID, id string) error {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteItem(ctx, groupID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func normalizeCategory(category string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !categoryPattern.MatchString(category) {
		return "", fmt.Errorf("%w: invalid category %q", ErrInvalidItem, category)
	}
	return category, nil
}

func normalizeName(name string) (string, error) {
	name = sanitize.Text(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if len([]rune(name)) > maxNameLength {
		return "", fmt.Errorf("%w: name is too long", ErrInvalidItem)
	}
	return name, nil
}
