package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DataServiceSuite struct {
	serviceSuite
}

func TestDataServiceSuite(t *testing.T) {
	suite.Run(t, new(DataServiceSuite))
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (s *DataServiceSuite) TestBudget() {
	user := s.createUser("alice")

	budget, err := s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.True(budget.IsZero())

	set, err := s.data.SetBudget(s.ctx, user, amount("42"))
	s.Require().NoError(err)
	s.Equal("42", set.String())

	budget, err = s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.Equal("42", budget.String())

	_, err = s.data.SetBudget(s.ctx, user, amount("1234.56"))
	s.Require().NoError(err)
	budget, err = s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.Equal("1234.56", budget.String(), "decimal values must survive the round trip")
}

func (s *DataServiceSuite) TestSetBudgetRejectsInvalid() {
	user := s.createUser("alice")
	_, err := s.data.SetBudget(s.ctx, user, amount("10"))
	s.Require().NoError(err)

	for _, in := range []*decimal.Decimal{nil, amount("-1")} {
		_, err := s.data.SetBudget(s.ctx, user, in)
		var verr *ValidationError
		s.ErrorAs(err, &verr)
	}

	budget, err := s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.Equal("10", budget.String(), "rejected updates leave the budget unchanged")
}

func (s *DataServiceSuite) TestBudgetsAreIsolated() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	_, err := s.data.SetBudget(s.ctx, alice, amount("100"))
	s.Require().NoError(err)

	budget, err := s.data.GetBudget(s.ctx, bob)
	s.Require().NoError(err)
	s.True(budget.IsZero())
}

func (s *DataServiceSuite) TestExpensesLifecycle() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	list, err := s.data.ListExpenses(s.ctx, alice)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)

	lunch, err := s.data.AddExpense(s.ctx, alice, ExpenseInput{Name: " Lunch ", Category: "Food", Amount: amount("12.50")})
	s.Require().NoError(err)
	s.NotZero(lunch.ID)
	s.Equal("Lunch", lunch.Name)
	s.Equal(alice.ID, lunch.UserID)
	s.Equal("12.5", lunch.Amount.String())

	_, err = s.data.AddExpense(s.ctx, alice, ExpenseInput{Name: "Refund", Category: "Misc", Amount: amount("-3")})
	s.Require().NoError(err, "amounts carry no sign constraint")

	_, err = s.data.AddExpense(s.ctx, bob, ExpenseInput{Name: "Bus", Category: "Travel", Amount: amount("2")})
	s.Require().NoError(err)

	list, err = s.data.ListExpenses(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Lunch", list[0].Name)
	s.Equal("Refund", list[1].Name)

	s.Require().NoError(s.data.DeleteExpense(s.ctx, alice, lunch.ID))
	list, err = s.data.ListExpenses(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Contains(s.activityTypes(alice), "expense.delete")
}

func (s *DataServiceSuite) TestAddExpenseValidation() {
	user := s.createUser("alice")

	tests := []struct {
		name string
		in   ExpenseInput
	}{
		{"blank name", ExpenseInput{Name: "  ", Category: "Food", Amount: amount("1")}},
		{"blank category", ExpenseInput{Name: "Lunch", Amount: amount("1")}},
		{"missing amount", ExpenseInput{Name: "Lunch", Category: "Food"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.data.AddExpense(s.ctx, user, tt.in)
			var verr *ValidationError
			s.ErrorAs(err, &verr)
		})
	}

	list, err := s.data.ListExpenses(s.ctx, user)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *DataServiceSuite) TestDeleteOtherUsersExpenseIsForbidden() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	expense, err := s.data.AddExpense(s.ctx, alice, ExpenseInput{Name: "Rent", Category: "Home", Amount: amount("900")})
	s.Require().NoError(err)

	err = s.data.DeleteExpense(s.ctx, bob, expense.ID)
	s.ErrorIs(err, ErrForbidden)

	list, err := s.data.ListExpenses(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 1, "row must still be present")
	s.Equal(expense.ID, list[0].ID)
}

func (s *DataServiceSuite) TestDeleteUnknownExpense() {
	user := s.createUser("alice")

	err := s.data.DeleteExpense(s.ctx, user, 9999)
	s.ErrorIs(err, ErrExpenseNotFound)
	s.ErrorIs(err, ErrNotFound)
}

func (s *DataServiceSuite) TestMoneyOutsideStorableRange() {
	user := s.createUser("alice")

	for _, in := range []string{
		"1e10000000",
		"1e-10000000",
		"12345678901234567890123",
		"0.001",
		"12.505",
	} {
		s.Run(in, func() {
			var verr *ValidationError
			_, err := s.data.SetBudget(s.ctx, user, amount(in))
			s.ErrorAs(err, &verr)
			_, err = s.data.AddExpense(s.ctx, user, ExpenseInput{Name: "Big", Category: "Misc", Amount: amount(in)})
			s.ErrorAs(err, &verr)
		})
	}

	budget, err := s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.True(budget.IsZero())
	list, err := s.data.ListExpenses(s.ctx, user)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *DataServiceSuite) TestMoneyAtRangeLimits() {
	user := s.createUser("alice")

	for _, in := range []string{"1234567890123456789012.99", "0.01", "1.000", "-3.50"} {
		_, err := s.data.AddExpense(s.ctx, user, ExpenseInput{Name: "Edge", Category: "Misc", Amount: amount(in)})
		s.NoError(err, in)
	}

	set, err := s.data.SetBudget(s.ctx, user, amount("1234567890123456789012.99"))
	s.Require().NoError(err)
	budget, err := s.data.GetBudget(s.ctx, user)
	s.Require().NoError(err)
	s.True(set.Equal(budget), "returned budget matches the stored one")
}
