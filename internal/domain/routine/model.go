package routine

import (
	"time"

	"alianca-go/pkg/calendar"
)

const (
	FrequencyDaily        = "daily"
	FrequencyWeekly       = "weekly"
	FrequencySpecificDate = "specific_date"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Routine struct {
	ID           string         `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	GroupID      string         `json:"group_id" gorm:"column:group_id;type:uuid;index;not null"`
	Title        string         `json:"title" gorm:"column:title;not null"`
	Description  *string        `json:"description" gorm:"column:description"`
	Time         string         `json:"time" gorm:"column:time;type:varchar(5);not null;default:''"`
	Icon         string         `json:"icon" gorm:"column:icon"`
	Priority     string         `json:"priority" gorm:"column:priority;type:varchar(8);not null"`
	Frequency    string         `json:"frequency" gorm:"column:frequency;type:varchar(16);not null"`
	WeekDays     WeekDays       `json:"week_days" gorm:"column:week_days;type:int[]"`
	SpecificDate *calendar.Date `json:"specific_date" gorm:"column:specific_date;type:date"`
	CreatedBy    string         `json:"created_by" gorm:"column:created_by;type:uuid"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at"`
}

// Completion marks a routine done by a user on a day. Presence is the
// completed state.
type Completion struct {
	ID             string        `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	RoutineID      string        `json:"routine_id" gorm:"column:routine_id;type:uuid;not null"`
	UserID         string        `json:"user_id" gorm:"column:user_id;type:uuid;not null"`
	CompletionDate calendar.Date `json:"completion_date" gorm:"column:completion_date;type:date;not null"`
	CreatedAt      time.Time     `json:"created_at" gorm:"column:created_at"`
}

type Status struct {
	Routine
	Completed bool `json:"completed"`
}

type Progress struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

type Input struct {
	Title        string
	Description  *string
	Time         string
	Icon         string
	Priority     string
	Frequency    string
	WeekDays     WeekDays
	SpecificDate *calendar.Date
}

type UpdateInput struct {
	Title        *string
	Description  *string
	Time         *string
	Icon         *string
	Priority     *string
	Frequency    *string
	WeekDays     *WeekDays
	SpecificDate *calendar.Date
}

// Matches reports whether the routine is scheduled on date.
func (r Routine) Matches(date calendar.Date) bool {
	switch r.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		weekday, err := date.Weekday()
		if err != nil {
			return false
		}
		return r.WeekDays.Contains(int(weekday))
	case FrequencySpecificDate:
		return r.SpecificDate != nil && *r.SpecificDate == date
	default:
		return false
	}
}

func ProgressOf(statuses []Status) Progress {
	progress := Progress{Total: len(statuses)}
	for _, s := range statuses {
		if !s.Completed {
			progress.Pending++
		}
	}
	return progress
}
