package finance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"alianca-go/pkg/calendar"
	"alianca-go/pkg/sanitize"
	"github.com/google/uuid"
)

const (
	RecentLimit    = 20
	maxTitleLength = 120
	maxAmount      = 9_999_999_999.99
)

type Service struct {
	repo   Repository
	groups GroupResolver
	loc    *time.Location
	now    func() time.Time
}

// NewService uses loc to decide what "today" is for undated transactions.
func NewService(repo Repository, groups GroupResolver, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:   repo,
		groups: groups,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *Service) GetTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRecent(ctx, groupID, RecentLimit)
}

func (s *Service) AddTransaction(ctx context.Context, userID string, input AddInput) (*Transaction, error) {
	title := sanitize.Text(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTransaction)
	}
	if len([]rune(title)) > maxTitleLength {
		return nil, fmt.Errorf("%w: title is too long", ErrInvalidTransaction)
	}
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 || input.Amount > maxAmount {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	amount := math.Round(input.Amount*100) / 100
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be at least one cent", ErrInvalidTransaction)
	}

	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if kind != TypeIncome && kind != TypeExpense {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrInvalidTransaction)
	}

	date := input.Date
	if date.IsZero() {
		date = calendar.Today(s.now(), s.loc)
	}

	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transaction := Transaction{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Title:     title,
		Amount:    amount,
		Type:      kind,
		Category:  sanitize.OptionalText(input.Category),
		Date:      date,
		CreatedBy: userID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateTransaction(ctx, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteTransaction(ctx, groupID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// GetSummary totals every transaction of the group.
func (s *Service) GetSummary(ctx context.Context, userID string) (Summary, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	transactions, err := s.repo.ListAll(ctx, groupID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(transactions), nil
}

func (s *Service) GetBalance(ctx context.Context, userID string) (float64, error) {
	groupID, err := s.groups.ResolveGroupID(ctx, userID)
	if err != nil {
		return 0, err
	}
	transactions, err := s.repo.ListAll(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return Balance(transactions), nil
}
