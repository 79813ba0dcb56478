package profile

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"alianca-go/internal/storage"
	"alianca-go/pkg/sanitize"
)

const maxAge = 130

type Service struct {
	repo    Repository
	avatars storage.Store
	now     func() time.Time
}

func NewService(repo Repository, avatars storage.Store) *Service {
	return &Service{repo: repo, avatars: avatars, now: time.Now}
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	return s.repo.GetProfile(ctx, userID)
}

// ListByUserIDs fetches profiles in one batch. Missing profiles are simply
// absent from the result.
func (s *Service) ListByUserIDs(ctx context.Context, userIDs []string) ([]Profile, error) {
	ids := uniqueNonEmpty(userIDs)
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	return s.repo.ListProfilesByIDs(ctx, ids)
}

// Onboard creates the caller's profile, or replaces it when the onboarding
// form is submitted again. The original creation time is kept.
func (s *Service) Onboard(ctx context.Context, userID string, input OnboardInput) (*Profile, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	name := sanitize.Text(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if err := validateAge(input.Age); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	profile := Profile{
		ID:           userID,
		Name:         name,
		Email:        email,
		Age:          input.Age,
		City:         sanitize.OptionalText(input.City),
		State:        sanitize.OptionalText(input.State),
		DatingSince:  input.DatingSince,
		MarriedSince: input.MarriedSince,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	existing, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
		profile.AvatarURL = existing.AvatarURL
	case errors.Is(err, ErrProfileNotFound):
	default:
		return nil, err
	}

	if err := s.repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) Update(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	changes := make(map[string]any)
	if input.Name != nil {
		name := sanitize.Text(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidProfile)
		}
		changes["name"] = name
	}
	if input.Age != nil {
		if err := validateAge(input.Age); err != nil {
			return nil, err
		}
		changes["age"] = *input.Age
	}
	if input.City != nil {
		changes["city"] = sanitize.OptionalText(input.City)
	}
	if input.State != nil {
		changes["state"] = sanitize.OptionalText(input.State)
	}
	if input.DatingSince != nil {
		changes["dating_since"] = *input.DatingSince
	}
	if input.MarriedSince != nil {
		changes["married_since"] = *input.MarriedSince
	}

	if len(changes) > 0 {
		changes["updated_at"] = s.now().UTC()
		if err := s.repo.UpdateProfile(ctx, userID, changes); err != nil {
			return nil, err
		}
	}
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) UploadAvatar(ctx context.Context, userID string, upload Upload) (*Profile, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	if s.avatars == nil {
		return nil, ErrStorageDisabled
	}
	if err := storage.ValidateImage(upload.ContentType, len(upload.Data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if _, err := s.repo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	objectPath := storage.ObjectPath("profiles/"+userID, upload.Filename, upload.ContentType)
	publicURL, err := s.avatars.Upload(ctx, objectPath, upload.ContentType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	now := s.now().UTC()
	avatarURL := storage.WithCacheBuster(publicURL, now)
	if err := s.repo.UpdateProfile(ctx, userID, map[string]any{"avatar_url": avatarURL, "updated_at": now}); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, userID)
}

func validateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > maxAge {
		return fmt.Errorf("%w: age out of range", ErrInvalidProfile)
	}
	return nil
}

func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	value := strings.ToLower(strings.TrimSpace(*email))
	if value == "" {
		return nil, nil
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidProfile)
	}
	return &value, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
