// Package calendar holds the YYYY-MM-DD calendar day used across the
// routine, finance and activity tables.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Date is a calendar day without a time zone. The zero value is the empty
// date and marshals as an empty string.
type Date string

func Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(Layout) && value[len(Layout)] == 'T' {
		value = value[:len(Layout)]
	}
	parsed, err := time.Parse(Layout, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return Date(parsed.Format(Layout)), nil
}

func FromTime(t time.Time) Date {
	return Date(t.Format(Layout))
}

// Today returns the current day in loc, or UTC when loc is nil.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(now.In(loc))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) Time() (time.Time, error) {
	return time.Parse(Layout, string(d))
}

// Weekday follows time.Weekday numbering, Sunday is 0.
func (d Date) Weekday() (time.Weekday, error) {
	t, err := d.Time()
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

func (d Date) AddDays(days int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return FromTime(t.AddDate(0, 0, days))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = ""
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}
