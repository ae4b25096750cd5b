package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/middleware"
)

type createIncomeRequest struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
	Date   int64           `json:"date"`
}

// CreateIncome records money received by the caller.
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var req createIncomeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Date == 0 {
		req.Date = time.Now().Unix()
	}

	income, err := h.ledger.CreateIncome(r.Context(),
		middleware.GetUserID(r.Context()), req.Source, req.Amount, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(income))
}

// ListIncomes returns the caller's incomes, newest first.
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := h.ledger.ListIncomes(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]incomeResponse, len(incomes))
	for i, income := range incomes {
		out[i] = toIncomeResponse(income)
	}
	writeJSON(w, http.StatusOK, out)
}

type setBudgetRequest struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

// SetBudget creates or replaces a monthly category budget. Month and year
// default to the current month.
func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	now := time.Now()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}

	budget, err := h.ledger.SetBudget(r.Context(),
		middleware.GetUserID(r.Context()), req.Category, req.Limit, req.Month, req.Year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

// ListBudgets returns the caller's budgets for a month, defaulting to the
// current one. Query params: month, year.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
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

	budgets, err := h.ledger.ListBudgets(r.Context(), middleware.GetUserID(r.Context()), month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListNotifications returns the caller's notifications, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.ledger.ListNotifications(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = toNotificationResponse(n)
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.MarkNotificationRead(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
