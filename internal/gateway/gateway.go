// Package gateway is the request/response boundary to the remote table
// store. Backends live in subpackages: postgres (gorm), supabase (PostgREST
// over HTTP) and memory.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpIn  Op = "in"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

func Neq(column string, value any) Filter {
	return Filter{Column: column, Op: OpNeq, Value: value}
}

func Gte(column string, value any) Filter {
	return Filter{Column: column, Op: OpGte, Value: value}
}

func Lte(column string, value any) Filter {
	return Filter{Column: column, Op: OpLte, Value: value}
}

func In[T any](column string, values []T) Filter {
	list := make([]any, 0, len(values))
	for _, value := range values {
		list = append(list, value)
	}
	return Filter{Column: column, Op: OpIn, Value: list}
}

type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Filters []Filter
	Orders  []Order
	Limit   int
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(column string, desc bool) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Column: column, Desc: desc})
	return q
}

func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}

// Gateway exposes per-table operations against the remote store. Select
// decodes rows into dest, which must be a pointer to a slice. Rows passed to
// Insert and Upsert are structs carrying json and gorm column tags.
type Gateway interface {
	Select(ctx context.Context, table string, query Query, dest any) error
	Insert(ctx context.Context, table string, row any) error
	Upsert(ctx context.Context, table string, row any, conflictColumns ...string) error
	Update(ctx context.Context, table string, filters []Filter, patch map[string]any) (int64, error)
	Delete(ctx context.Context, table string, filters []Filter) (int64, error)
	Count(ctx context.Context, table string, filters []Filter) (int64, error)
}

var (
	ErrConflict       = errors.New("gateway: unique constraint violation")
	ErrInvalidQuery   = errors.New("gateway: invalid query")
	ErrMissingFilters = errors.New("gateway: update and delete require filters")
)

// Error is a failure reported by the remote store.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (code=%s, status=%d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s (status=%d)", e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	if e.Code == "23505" || e.StatusCode == 409 {
		return ErrConflict
	}
	return nil
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier rejects table and column names that are not plain
// snake_case identifiers.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: identifier %q", ErrInvalidQuery, name)
	}
	return nil
}

// Validate checks every identifier and operator used by the query.
func (q Query) Validate() error {
	if err := ValidateFilters(q.Filters); err != nil {
		return err
	}
	for _, order := range q.Orders {
		if err := ValidateIdentifier(order.Column); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return nil
}

func ValidateFilters(filters []Filter) error {
	for _, filter := range filters {
		if err := ValidateIdentifier(filter.Column); err != nil {
			return err
		}
		switch filter.Op {
		case OpEq, OpNeq, OpGte, OpLte:
		case OpIn:
			if _, ok := filter.Value.([]any); !ok {
				return fmt.Errorf("%w: in filter on %q needs a list", ErrInvalidQuery, filter.Column)
			}
		default:
			return fmt.Errorf("%w: operator %q", ErrInvalidQuery, filter.Op)
		}
	}
	return nil
}

// IsEmptyIn reports whether any filter is an in-list without values; such a
// query can never match.
func IsEmptyIn(filters []Filter) bool {
	for _, filter := range filters {
		if filter.Op != OpIn {
			continue
		}
		if values, ok := filter.Value.([]any); ok && len(values) == 0 {
			return true
		}
	}
	return false
}
