// Package handlers exposes the REST and SSE surface of the API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/auth"
	"github.com/kharcha/kharcha/internal/middleware"
	"github.com/kharcha/kharcha/internal/notify"
	"github.com/kharcha/kharcha/internal/service"
)

// Handler holds the wired services behind the HTTP surface.
type Handler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	groups        *service.GroupService
	expenses      *service.ExpenseService
	settlements   *service.SettlementService
	ledger        *service.LedgerService
	hub           *notify.Hub
}

// New creates a Handler over the given services.
func New(
	authenticator auth.Authenticator,
	jwtManager *auth.JWTManager,
	groups *service.GroupService,
	expenses *service.ExpenseService,
	settlements *service.SettlementService,
	ledger *service.LedgerService,
	hub *notify.Hub,
) *Handler {
	return &Handler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		groups:        groups,
		expenses:      expenses,
		settlements:   settlements,
		ledger:        ledger,
		hub:           hub,
	}
}

// Routes builds the API router. Everything except register and login
// requires a bearer token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtManager))

			r.Get("/auth/me", h.Me)
			r.Patch("/users/me/upi", h.SetUPIAddress)

			r.Post("/groups", h.CreateGroup)
			r.Get("/groups", h.ListGroups)
			r.Get("/groups/{groupId}", h.GetGroup)
			r.Post("/groups/{groupId}/members", h.AddGroupMember)
			r.Get("/groups/{groupId}/expenses", h.ListGroupExpenses)

			r.Post("/expenses", h.CreateExpense)
			r.Get("/expenses", h.ListMyExpenses)

			r.Post("/incomes", h.CreateIncome)
			r.Get("/incomes", h.ListIncomes)

			r.Put("/budgets", h.SetBudget)
			r.Get("/budgets", h.ListBudgets)

			r.Get("/notifications", h.ListNotifications)
			r.Post("/notifications/{id}/read", h.MarkNotificationRead)

			r.Get("/settlements/group/{groupId}/balances", h.GroupBalances)
			r.Get("/settlements/group/{groupId}", h.ListSettlements)
			r.Post("/settlements/request", h.RequestSettlement)
			r.Post("/settlements/{id}/pay", h.PaySettlement)
			r.Post("/settlements/{id}/cancel", h.CancelSettlement)
			r.Post("/settlements/{id}/upi-link", h.SettlementUPILink)

			r.Get("/events", h.Events)
		})
	})

	return r
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`

	// ResourceID points at the conflicting resource for conflict errors,
	// e.g. the already-pending settlement.
	ResourceID string `json:"resourceId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.Internal {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, appErr.HTTPStatus(), errorResponse{
		Error:      appErr.Message,
		ResourceID: appErr.ResourceID,
	})
}

// decode reads a JSON request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "request body is required")
		}
		return apperr.Wrap(apperr.Validation, err, "invalid request body")
	}
	return nil
}
