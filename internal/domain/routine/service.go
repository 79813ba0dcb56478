package routine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"alianca-go/pkg/calendar"
	"alianca-go/pkg/sanitize"
	"github.com/google/uuid"
)

const maxTitleLength = 120

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type Service struct {
	repo   Repository
	groups GroupResolver
	now    func() time.Time
}

func NewService(repo Repository, groups GroupResolver) *Service {
	return &Service{
		repo:   repo,
		groups: groups,
		now:    time.Now,
	}
}

func (s *Service) GetGroupRoutines(ctx context.Context, userID string) ([]Routine, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRoutines(ctx, groupID)
}

func (s *Service) GetRoutine(ctx context.Context, userID, id string) (*Routine, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetRoutine(ctx, groupID, id)
}

func (s *Service) CreateRoutine(ctx context.Context, userID string, input Input) (*Routine, error) {
	routine := Routine{
		Title:        input.Title,
		Description:  input.Description,
		Time:         input.Time,
		Icon:         input.Icon,
		Priority:     input.Priority,
		Frequency:    input.Frequency,
		WeekDays:     input.WeekDays,
		SpecificDate: input.SpecificDate,
	}
	if err := normalizeRoutine(&routine); err != nil {
		return nil, err
	}

	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}

	routine.ID = uuid.NewString()
	routine.GroupID = groupID
	routine.CreatedBy = userID
	routine.CreatedAt = s.now().UTC()
	if err := s.repo.CreateRoutine(ctx, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// UpdateRoutine applies a partial update and revalidates the merged routine.
func (s *Service) UpdateRoutine(ctx context.Context, userID, id string, input UpdateInput) (*Routine, error) {
	routine, err := s.GetRoutine(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		routine.Title = *input.Title
	}
	if input.Description != nil {
		routine.Description = input.Description
	}
	if input.Time != nil {
		routine.Time = *input.Time
	}
	if input.Icon != nil {
		routine.Icon = *input.Icon
	}
	if input.Priority != nil {
		routine.Priority = *input.Priority
	}
	if input.Frequency != nil {
		routine.Frequency = *input.Frequency
	}
	if input.WeekDays != nil {
		routine.WeekDays = *input.WeekDays
	}
	if input.SpecificDate != nil {
		routine.SpecificDate = input.SpecificDate
	}
	if err := normalizeRoutine(routine); err != nil {
		return nil, err
	}

	changes := map[string]any{
		"title":         routine.Title,
		"description":   routine.Description,
		"time":          routine.Time,
		"icon":          routine.Icon,
		"priority":      routine.Priority,
		"frequency":     routine.Frequency,
		"week_days":     routine.WeekDays,
		"specific_date": routine.SpecificDate,
	}
	affected, err := s.repo.UpdateRoutine(ctx, routine.GroupID, id, changes)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRoutineNotFound
	}
	return routine, nil
}

// DeleteRoutine removes completions before the routine row.
func (s *Service) DeleteRoutine(ctx context.Context, userID, id string) error {
	routine, err := s.GetRoutine(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCompletionsByRoutine(ctx, routine.ID); err != nil {
		return err
	}
	affected, err := s.repo.DeleteRoutine(ctx, routine.GroupID, routine.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

// GetCompletions returns every user's completions of the routines on date.
// No ids means no remote call.
func (s *Service) GetCompletions(ctx context.Context, routineIDs []string, date calendar.Date) ([]Completion, error) {
	if len(routineIDs) == 0 {
		return []Completion{}, nil
	}
	return s.repo.ListCompletions(ctx, routineIDs, date)
}

// GetGroupCompletions is GetCompletions restricted to routines of the
// caller's group.
func (s *Service) GetGroupCompletions(ctx context.Context, userID string, routineIDs []string, date calendar.Date) ([]Completion, error) {
	if len(routineIDs) == 0 {
		return []Completion{}, nil
	}
	routines, err := s.GetGroupRoutines(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(routines))
	for _, r := range routines {
		owned[r.ID] = true
	}
	ids := make([]string, 0, len(routineIDs))
	for _, id := range routineIDs {
		if owned[id] {
			ids = append(ids, id)
		}
	}
	return s.GetCompletions(ctx, ids, date)
}

// ToggleCompletion deletes the completion when wasCompleted is set and
// inserts one otherwise. It reports the resulting state.
func (s *Service) ToggleCompletion(ctx context.Context, routineID, userID string, date calendar.Date, wasCompleted bool) (bool, error) {
	if date.IsZero() {
		return false, fmt.Errorf("%w: date is required", ErrInvalidRoutine)
	}
	if _, err := s.GetRoutine(ctx, userID, routineID); err != nil {
		return false, err
	}

	if wasCompleted {
		if _, err := s.repo.DeleteCompletion(ctx, routineID, userID, date); err != nil {
			return true, err
		}
		return false, nil
	}

	completion := Completion{
		ID:             uuid.NewString(),
		RoutineID:      routineID,
		UserID:         userID,
		CompletionDate: date,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.AddCompletion(ctx, &completion); err != nil {
		if errors.Is(err, ErrCompletionExists) {
			return true, err
		}
		return false, err
	}
	return true, nil
}

// GetStreak counts every completion the user ever recorded.
func (s *Service) GetStreak(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user is required", ErrInvalidRoutine)
	}
	return s.repo.CountCompletions(ctx, userID)
}

// RoutinesForDate lists the routines scheduled on date with the caller's
// completion state.
func (s *Service) RoutinesForDate(ctx context.Context, userID string, date calendar.Date) ([]Status, error) {
	if _, err := date.Time(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoutine, err)
	}
	routines, err := s.GetGroupRoutines(ctx, userID)
	if err != nil {
		return nil, err
	}

	scheduled := make([]Routine, 0, len(routines))
	ids := make([]string, 0, len(routines))
	for _, r := range routines {
		if r.Matches(date) {
			scheduled = append(scheduled, r)
			ids = append(ids, r.ID)
		}
	}

	completions, err := s.GetCompletions(ctx, ids, date)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		if c.UserID == userID {
			done[c.RoutineID] = true
		}
	}

	statuses := make([]Status, 0, len(scheduled))
	for _, r := range scheduled {
		statuses = append(statuses, Status{Routine: r, Completed: done[r.ID]})
	}
	// Untimed routines go last.
	sort.SliceStable(statuses, func(i, j int) bool {
		a, b := statuses[i].Time, statuses[j].Time
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a < b
	})
	return statuses, nil
}

func normalizeRoutine(r *Routine) error {
	r.Title = sanitize.Text(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRoutine)
	}
	if len([]rune(r.Title)) > maxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrInvalidRoutine)
	}
	r.Description = sanitize.OptionalText(r.Description)
	r.Icon = strings.TrimSpace(r.Icon)

	r.Time = strings.TrimSpace(r.Time)
	if r.Time != "" && !timePattern.MatchString(r.Time) {
		return fmt.Errorf("%w: time must be HH:MM", ErrInvalidRoutine)
	}

	r.Priority = strings.ToLower(strings.TrimSpace(r.Priority))
	switch r.Priority {
	case "":
		r.Priority = PriorityMedium
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidRoutine, r.Priority)
	}

	r.Frequency = strings.ToLower(strings.TrimSpace(r.Frequency))
	switch r.Frequency {
	case FrequencyDaily:
		r.WeekDays = WeekDays{}
		r.SpecificDate = nil
	case FrequencyWeekly:
		days, err := r.WeekDays.Normalize()
		if err != nil {
			return err
		}
		if len(days) == 0 {
			return fmt.Errorf("%w: weekly routines need week days", ErrInvalidRoutine)
		}
		r.WeekDays = days
		r.SpecificDate = nil
	case FrequencySpecificDate:
		if r.SpecificDate == nil || r.SpecificDate.IsZero() {
			return fmt.Errorf("%w: specific_date is required", ErrInvalidRoutine)
		}
		r.WeekDays = WeekDays{}
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRoutine, r.Frequency)
	}
	return nil
}
