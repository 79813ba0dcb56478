package routine

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WeekDays lists days with Sunday as 0. It is stored as a Postgres int[]
// and travels as a JSON array.
type WeekDays []int

func (w WeekDays) Contains(day int) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

// Normalize sorts and deduplicates the days and rejects values outside 0..6.
func (w WeekDays) Normalize() (WeekDays, error) {
	seen := make(map[int]bool, len(w))
	out := make(WeekDays, 0, len(w))
	for _, d := range w {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: week day %d out of range", ErrInvalidRoutine, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out, nil
}

func (w WeekDays) MarshalJSON() ([]byte, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(w))
}

func (w WeekDays) Value() (driver.Value, error) {
	parts := make([]string, 0, len(w))
	for _, d := range w {
		parts = append(parts, strconv.Itoa(d))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (w *WeekDays) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("routine: cannot scan %T into WeekDays", src)
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var days []int
		if err := json.Unmarshal([]byte(raw), &days); err != nil {
			return err
		}
		*w = days
		return nil
	}

	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}")
	if raw == "" {
		*w = WeekDays{}
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make(WeekDays, 0, len(parts))
	for _, part := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("routine: invalid week day %q: %w", part, err)
		}
		days = append(days, d)
	}
	*w = days
	return nil
}
