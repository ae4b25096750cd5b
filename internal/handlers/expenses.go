package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/middleware"
	"github.com/kharcha/kharcha/internal/service"
)

type splitRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type createExpenseRequest struct {
	GroupID       string          `json:"groupId"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Date          int64           `json:"date"`
	Splits        []splitRequest  `json:"splits"`
}

// CreateExpense records an expense. For group expenses, omitted splits
// mean an equal split among all members.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Date == 0 {
		req.Date = time.Now().Unix()
	}
	splits := make([]service.SplitInput, len(req.Splits))
	for i, s := range req.Splits {
		splits[i] = service.SplitInput{UserID: s.UserID, Amount: s.Amount}
	}

	expense, err := h.expenses.Create(r.Context(), service.CreateExpenseInput{
		PayerID:       middleware.GetUserID(r.Context()),
		GroupID:       req.GroupID,
		Description:   req.Description,
		Category:      req.Category,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
		Splits:        splits,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// ListMyExpenses returns the caller's expenses for a month, defaulting to
// the current one. Query params: month, year, category.
func (h *Handler) ListMyExpenses(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month, err := intQuery(r, "month", int(now.Month()))
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := intQuery(r, "year", now.Year())
	if err != nil {
		writeError(w, err)
		return
	}

	expenses, err := h.expenses.ListMine(r.Context(),
		middleware.GetUserID(r.Context()), r.URL.Query().Get("category"), month, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

// ListGroupExpenses returns a group's shared expenses.
func (h *Handler) ListGroupExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.ListByGroup(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

// intQuery parses an integer query parameter, returning fallback when absent.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.Validation, "%s must be an integer", name)
	}
	return value, nil
}
