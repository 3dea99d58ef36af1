package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/shopspring/decimal"
)

// DataServiceProvider defines the interface for a user's budget and expenses.
// Every method is scoped to the user passed in.
type DataServiceProvider interface {
	GetBudget(ctx context.Context, user models.User) (decimal.Decimal, error)
	SetBudget(ctx context.Context, user models.User, budget *decimal.Decimal) (decimal.Decimal, error)
	ListExpenses(ctx context.Context, user models.User) ([]models.Expense, error)
	AddExpense(ctx context.Context, user models.User, in ExpenseInput) (models.Expense, error)
	DeleteExpense(ctx context.Context, user models.User, id int64) error
}

// ExpenseInput carries a new expense. A nil Amount means it was not supplied.
type ExpenseInput struct {
	Name     string
	Category string
	Amount   *decimal.Decimal
}

// DataService provides ownership-scoped access to budgets and expenses.
type DataService struct {
	db       *database.DB
	activity ActivityServiceProvider
}

// NewDataService creates a new DataService.
func NewDataService(db *database.DB, activity ActivityServiceProvider) *DataService {
	return &DataService{db: db, activity: activity}
}

// GetBudget returns the user's stored budget.
func (s *DataService) GetBudget(ctx context.Context, user models.User) (decimal.Decimal, error) {
	var budget decimal.Decimal
	err := s.db.QueryRowContext(ctx, "SELECT budget FROM users WHERE id = ?", user.ID).Scan(&budget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return budget, nil
}

// SetBudget overwrites the user's budget. Missing or negative values are rejected.
func (s *DataService) SetBudget(ctx context.Context, user models.User, budget *decimal.Decimal) (decimal.Decimal, error) {
	if budget == nil {
		return decimal.Zero, invalid("budget is required")
	}
	if budget.IsNegative() {
		return decimal.Zero, invalid("budget must not be negative")
	}
	if err := validateMoney("budget", *budget); err != nil {
		return decimal.Zero, err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE users SET budget = ? WHERE id = ?", *budget, user.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("update budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return decimal.Zero, ErrUserNotFound
	}
	return *budget, nil
}

// ListExpenses returns the user's expenses in insertion order.
func (s *DataService) ListExpenses(ctx context.Context, user models.User) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, category, amount, created_at FROM expenses WHERE user_id = ? ORDER BY id",
		user.ID)
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %d: %w", user.ID, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Category, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// AddExpense creates an expense owned by the user.
func (s *DataService) AddExpense(ctx context.Context, user models.User, in ExpenseInput) (models.Expense, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	switch {
	case name == "":
		return models.Expense{}, invalid("expense name cannot be blank")
	case category == "":
		return models.Expense{}, invalid("expense category cannot be blank")
	case in.Amount == nil:
		return models.Expense{}, invalid("expense amount is required")
	}
	if err := validateMoney("expense amount", *in.Amount); err != nil {
		return models.Expense{}, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO expenses (user_id, name, category, amount) VALUES (?, ?, ?, ?) RETURNING id",
		user.ID, name, category, *in.Amount,
	).Scan(&id)
	if err != nil {
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return s.getExpense(ctx, id)
}

// DeleteExpense removes an expense. Expenses of other users are left intact
// and reported as ErrForbidden.
func (s *DataService) DeleteExpense(ctx context.Context, user models.User, id int64) error {
	expense, err := s.getExpense(ctx, id)
	if err != nil {
		return err
	}
	if expense.UserID != user.ID {
		return ErrForbidden
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, user.ID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrExpenseNotFound
	}

	msg := fmt.Sprintf("Expense '%s' (%s) deleted.", expense.Name, expense.Amount.String())
	record(ctx, s.activity, "expense.delete", LevelInfo, msg, &user.ID)
	return nil
}

func (s *DataService) getExpense(ctx context.Context, id int64) (models.Expense, error) {
	var e models.Expense
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, category, amount, created_at FROM expenses WHERE id = ?", id,
	).Scan(&e.ID, &e.UserID, &e.Name, &e.Category, &e.Amount, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrExpenseNotFound
		}
		return models.Expense{}, err
	}
	return e, nil
}
