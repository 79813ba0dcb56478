package finance

import (
	"time"

	"alianca-go/pkg/calendar"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

type Transaction struct {
	ID        string        `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	GroupID   string        `json:"group_id" gorm:"column:group_id;type:uuid;index;not null"`
	Title     string        `json:"title" gorm:"column:title;not null"`
	Amount    float64       `json:"amount" gorm:"column:amount;type:numeric(12,2);not null"`
	Type      string        `json:"type" gorm:"column:type;type:varchar(16);not null"`
	Category  *string       `json:"category" gorm:"column:category"`
	Date      calendar.Date `json:"date" gorm:"column:date;type:date;not null"`
	CreatedBy string        `json:"created_by" gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time     `json:"created_at" gorm:"column:created_at"`
}

type AddInput struct {
	Title    string
	Amount   float64
	Type     string
	Category *string
	Date     calendar.Date
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

type Summary struct {
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}
