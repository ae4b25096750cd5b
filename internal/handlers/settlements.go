package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/middleware"
)

// GroupBalances returns each member's net position in a group.
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.settlements.GroupBalances(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

type requestSettlementRequest struct {
	GroupID  string          `json:"groupId"`
	ToUserID string          `json:"toUserId"`
	Amount   decimal.Decimal `json:"amount"`
}

// RequestSettlement creates a pending settlement from the caller to a
// fellow group member.
func (h *Handler) RequestSettlement(w http.ResponseWriter, r *http.Request) {
	var req requestSettlementRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.settlements.Request(r.Context(),
		middleware.GetUserID(r.Context()), req.GroupID, req.ToUserID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

// ListSettlements returns a group's settlements, newest first, with
// resolved party names.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	views, err := h.settlements.List(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementViewResponses(views))
}

type paySettlementRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
}

// PaySettlement marks a pending settlement as paid. Payer only.
func (h *Handler) PaySettlement(w http.ResponseWriter, r *http.Request) {
	var req paySettlementRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.settlements.MarkPaid(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.PaymentMethod, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

// CancelSettlement cancels a pending settlement. Payer only.
func (h *Handler) CancelSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.settlements.Cancel(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

// SettlementUPILink returns the UPI deep link for a pending settlement.
func (h *Handler) SettlementUPILink(w http.ResponseWriter, r *http.Request) {
	link, err := h.settlements.GeneratePaymentLink(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentLinkResponse{
		UPILink:      link.UPILink,
		QRData:       link.QRData,
		Amount:       link.Amount,
		PayeeName:    link.PayeeName,
		PayeeUPIID:   link.PayeeUPIID,
		SettlementID: link.SettlementID,
	})
}
