package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a categorized line item owned by exactly one user.
type Expense struct {
	ID        int64
	UserID    int64
	Name      string
	Category  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}
