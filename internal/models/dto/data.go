package dto

import (
	"encoding/json"
	"time"

	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/shopspring/decimal"
)

// BudgetRequest is the body of POST /api/data/budget. A nil Budget means the
// field was missing or null.
type BudgetRequest struct {
	Budget *decimal.Decimal `json:"budget"`
}

type BudgetResponse struct {
	Budget json.Number `json:"budget"`
}

// ExpenseRequest is the body of POST /api/data/expenses.
type ExpenseRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
}

type ExpenseResponse struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

type ActivityResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Number renders a decimal as a JSON number literal rather than a string.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func NewBudgetResponse(budget decimal.Decimal) BudgetResponse {
	return BudgetResponse{Budget: Number(budget)}
}

func NewExpenseResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:       e.ID,
		Name:     e.Name,
		Category: e.Category,
		Amount:   Number(e.Amount),
	}
}

// NewExpenseList maps expenses, returning an empty (non-nil) slice for none.
func NewExpenseList(expenses []models.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, NewExpenseResponse(e))
	}
	return out
}

func NewActivityList(entries []models.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(entries))
	for _, a := range entries {
		out = append(out, ActivityResponse{
			ID:        a.ID,
			Type:      a.Type,
			Level:     a.Level,
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}
