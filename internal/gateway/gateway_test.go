package gateway

import (
	"errors"
	"testing"
)

func TestErrorUnwrapsConflict(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{err: &Error{StatusCode: 400, Code: "23505", Message: "dup"}, want: true},
		{err: &Error{StatusCode: 409, Message: "conflict"}, want: true},
		{err: &Error{StatusCode: 500, Code: "XX000", Message: "boom"}, want: false},
	}
	for _, tc := range cases {
		if got := errors.Is(tc.err, ErrConflict); got != tc.want {
			t.Fatalf("errors.Is(%v, ErrConflict) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestQueryValidate(t *testing.T) {
	valid := Where(Eq("group_id", "g1"), In("id", []string{"a"})).OrderBy("created_at", true).WithLimit(3)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid query, got %v", err)
	}

	invalid := []Query{
		Where(Eq("Group-ID", "g1")),
		Query{}.OrderBy("created_at desc", false),
		Where(Filter{Column: "id", Op: "like", Value: "x"}),
		Where(Filter{Column: "id", Op: OpIn, Value: "not-a-list"}),
		{Limit: -1},
	}
	for _, q := range invalid {
		if err := q.Validate(); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery for %+v, got %v", q, err)
		}
	}
}

func TestOrderByDoesNotAlias(t *testing.T) {
	base := Query{}.OrderBy("a", false)
	first := base.OrderBy("b", false)
	second := base.OrderBy("c", true)
	if first.Orders[1].Column != "b" || second.Orders[1].Column != "c" {
		t.Fatalf("order slices alias: %+v %+v", first.Orders, second.Orders)
	}
}

func TestIsEmptyIn(t *testing.T) {
	if !IsEmptyIn([]Filter{Eq("a", 1), In("id", []string{})}) {
		t.Fatalf("expected empty in-list detected")
	}
	if IsEmptyIn([]Filter{In("id", []string{"x"})}) {
		t.Fatalf("expected non-empty in-list")
	}
}
