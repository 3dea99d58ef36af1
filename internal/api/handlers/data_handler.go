package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/isdelr/budget-manager-be/internal/services"
)

// DataHandler handles HTTP requests for a user's budget and expenses.
type DataHandler struct {
	service services.DataServiceProvider
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(service services.DataServiceProvider) *DataHandler {
	return &DataHandler{service: service}
}

// GetBudget handles the request to read the user's budget.
func (h *DataHandler) GetBudget(w http.ResponseWriter, r *http.Request, user models.User) {
	budget, err := h.service.GetBudget(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err, "get budget")
		return
	}
	respondJSON(w, http.StatusOK, dto.NewBudgetResponse(budget))
}

// SetBudget handles the request to overwrite the user's budget.
func (h *DataHandler) SetBudget(w http.ResponseWriter, r *http.Request, user models.User) {
	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	budget, err := h.service.SetBudget(r.Context(), user, req.Budget)
	if err != nil {
		respondServiceError(w, r, err, "set budget")
		return
	}
	respondJSON(w, http.StatusOK, dto.NewBudgetResponse(budget))
}

// ListExpenses handles the request to list the user's expenses.
func (h *DataHandler) ListExpenses(w http.ResponseWriter, r *http.Request, user models.User) {
	expenses, err := h.service.ListExpenses(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err, "list expenses")
		return
	}
	respondJSON(w, http.StatusOK, dto.NewExpenseList(expenses))
}

// AddExpense handles the request to create an expense.
func (h *DataHandler) AddExpense(w http.ResponseWriter, r *http.Request, user models.User) {
	var req dto.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.service.AddExpense(r.Context(), user, services.ExpenseInput{
		Name:     req.Name,
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		respondServiceError(w, r, err, "add expense")
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewExpenseResponse(expense))
}

// DeleteExpense handles the request to delete one of the user's expenses.
func (h *DataHandler) DeleteExpense(w http.ResponseWriter, r *http.Request, user models.User) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), user, id); err != nil {
		respondServiceError(w, r, err, "delete expense")
		return
	}
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Expense deleted successfully"})
}
