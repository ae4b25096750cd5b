package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/calculator"
	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/notify"
	"github.com/kharcha/kharcha/internal/storage"
	"github.com/kharcha/kharcha/internal/upi"
)

// transactionIDPattern validates externally supplied payment references.
var transactionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// SettlementService mediates the debt payoff lifecycle between two group
// members: request (pending) -> paid | cancelled.
type SettlementService struct {
	store    storage.Store
	notifier *notify.Engine
	groups   *GroupService
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, notifier *notify.Engine, groups *GroupService) *SettlementService {
	return &SettlementService{store: store, notifier: notifier, groups: groups}
}

// SettlementView is a settlement with denormalized party names, resolved
// at read time rather than stored.
type SettlementView struct {
	*models.Settlement
	FromUserName  string
	FromUserEmail string
	ToUserName    string
	ToUserEmail   string
}

// PaymentLink is everything a client needs to hand off to a payment app.
type PaymentLink struct {
	UPILink      string
	QRData       string
	Amount       decimal.Decimal
	PayeeName    string
	PayeeUPIID   string
	SettlementID string
}

// Request creates a pending settlement from the debtor to the creditor.
// The amount is the debtor's snapshot of what they owe; it is not
// re-derived at payment time. A pending settlement for the same
// (group, debtor, creditor) pair rejects the request with a reference
// to the existing one.
func (s *SettlementService) Request(ctx context.Context, fromUserID, groupID, toUserID string, amount decimal.Decimal) (*models.Settlement, error) {
	if fromUserID == toUserID {
		return nil, apperr.New(apperr.Validation, "you cannot settle with yourself")
	}
	if !amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}
	if amount.GreaterThan(models.MaxSettlementAmount) {
		return nil, apperr.New(apperr.Validation, "amount exceeds the maximum of %s", models.MaxSettlementAmount.String())
	}

	group, err := s.groups.Get(ctx, fromUserID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(toUserID) {
		return nil, apperr.New(apperr.Validation, "recipient is not a member of this group")
	}

	existing, err := s.store.FindPendingSettlement(ctx, groupID, fromUserID, toUserID)
	if err != nil {
		slog.Error("FindPendingSettlement failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to check for pending settlements")
	}
	if existing != nil {
		return nil, apperr.Conflicting(existing.ID, "a pending settlement to this member already exists")
	}

	settlement := &models.Settlement{
		GroupID:    groupID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		Status:     models.SettlementPending,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to create settlement")
	}

	slog.Info("Settlement requested",
		"settlement_id", settlement.ID,
		"group_id", groupID,
		"from", fromUserID,
		"to", toUserID,
		"amount", amount.String(),
	)

	// Best-effort notification to the creditor.
	if debtor, err := s.store.GetUserByID(ctx, fromUserID); err == nil && debtor != nil {
		s.notifier.SettlementRequested(ctx, settlement, debtor)
	}

	return settlement, nil
}

// GeneratePaymentLink builds the UPI deep link for a pending settlement.
// Fails with a user-facing error when the creditor has no UPI address,
// an expected condition rather than a system fault.
func (s *SettlementService) GeneratePaymentLink(ctx context.Context, callerID, settlementID string) (*PaymentLink, error) {
	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if callerID != settlement.FromUserID && callerID != settlement.ToUserID {
		return nil, apperr.New(apperr.Authorization, "you are not a party to this settlement")
	}
	if settlement.Status != models.SettlementPending {
		return nil, apperr.New(apperr.Conflict, "settlement is not pending")
	}

	creditor, err := s.store.GetUserByID(ctx, settlement.ToUserID)
	if err != nil {
		slog.Error("GeneratePaymentLink: failed to get creditor", "user_id", settlement.ToUserID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to look up payee")
	}
	if creditor == nil {
		return nil, apperr.New(apperr.NotFound, "payee not found")
	}
	if creditor.UPIAddress == "" {
		return nil, apperr.New(apperr.ExternalDependency,
			"%s has not set a UPI address yet, ask them to add one in their profile", creditor.DisplayName)
	}

	note := fmt.Sprintf("Settling up with %s", creditor.DisplayName)
	link := upi.Link(creditor.UPIAddress, creditor.DisplayName, settlement.Amount, note)

	return &PaymentLink{
		UPILink:      link,
		QRData:       link,
		Amount:       settlement.Amount,
		PayeeName:    creditor.DisplayName,
		PayeeUPIID:   creditor.UPIAddress,
		SettlementID: settlement.ID,
	}, nil
}

// MarkPaid transitions a settlement from pending to paid. Only the debtor
// may call it. The status guard is enforced atomically at the storage
// layer, so concurrent calls succeed at most once.
func (s *SettlementService) MarkPaid(ctx context.Context, callerID, settlementID, paymentMethod, transactionID string) (*models.Settlement, error) {
	transactionID = strings.TrimSpace(transactionID)
	if !transactionIDPattern.MatchString(transactionID) {
		return nil, apperr.New(apperr.Validation,
			"transaction id must be 1-50 characters: letters, digits, hyphen or underscore")
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, apperr.New(apperr.Validation, "invalid payment method: %s", paymentMethod)
	}

	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if callerID != settlement.FromUserID {
		return nil, apperr.New(apperr.Authorization, "only the payer can mark a settlement as paid")
	}

	paidAt := time.Now().Unix()
	ok, err := s.store.TransitionSettlement(ctx, settlementID,
		models.SettlementPending, models.SettlementPaid, paymentMethod, transactionID, paidAt)
	if err != nil {
		slog.Error("TransitionSettlement failed", "settlement_id", settlementID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to update settlement")
	}
	if !ok {
		return nil, apperr.Conflicting(settlementID, "settlement is not pending")
	}

	settlement.Status = models.SettlementPaid
	settlement.PaymentMethod = paymentMethod
	settlement.TransactionID = transactionID
	settlement.PaidAt = paidAt

	slog.Info("Settlement paid",
		"settlement_id", settlementID,
		"method", paymentMethod,
		"transaction_id", transactionID,
	)

	// Best-effort notification to the creditor.
	if debtor, err := s.store.GetUserByID(ctx, settlement.FromUserID); err == nil && debtor != nil {
		s.notifier.SettlementPaid(ctx, settlement, debtor)
	}

	return settlement, nil
}

// Cancel transitions a settlement from pending to cancelled. Only the
// debtor may call it.
func (s *SettlementService) Cancel(ctx context.Context, callerID, settlementID string) (*models.Settlement, error) {
	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if callerID != settlement.FromUserID {
		return nil, apperr.New(apperr.Authorization, "only the payer can cancel a settlement")
	}

	ok, err := s.store.TransitionSettlement(ctx, settlementID,
		models.SettlementPending, models.SettlementCancelled, "", "", 0)
	if err != nil {
		slog.Error("TransitionSettlement failed", "settlement_id", settlementID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to update settlement")
	}
	if !ok {
		return nil, apperr.Conflicting(settlementID, "settlement is not pending")
	}

	settlement.Status = models.SettlementCancelled
	slog.Info("Settlement cancelled", "settlement_id", settlementID)
	return settlement, nil
}

// List returns a group's settlements, newest first, with party names and
// emails resolved at read time.
func (s *SettlementService) List(ctx context.Context, callerID, groupID string) ([]SettlementView, error) {
	if _, err := s.groups.Get(ctx, callerID, groupID); err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListSettlementsByGroup failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list settlements")
	}

	ids := make([]string, 0, len(settlements)*2)
	for _, settlement := range settlements {
		ids = append(ids, settlement.FromUserID, settlement.ToUserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Error("GetUsersByIDs failed", "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to resolve users")
	}

	views := make([]SettlementView, len(settlements))
	for i, settlement := range settlements {
		view := SettlementView{Settlement: settlement}
		if u := users[settlement.FromUserID]; u != nil {
			view.FromUserName, view.FromUserEmail = u.DisplayName, u.Email
		}
		if u := users[settlement.ToUserID]; u != nil {
			view.ToUserName, view.ToUserEmail = u.DisplayName, u.Email
		}
		views[i] = view
	}

	return views, nil
}

// GroupBalances computes every member's net position from the group's
// expenses and splits. Pure projection: recomputed from the full row set
// on each call.
func (s *SettlementService) GroupBalances(ctx context.Context, callerID, groupID string) ([]calculator.MemberBalance, error) {
	group, err := s.groups.Get(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListExpensesByGroup failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list expenses")
	}
	splits, err := s.store.ListSplitsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListSplitsByGroup failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list splits")
	}

	ids := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		ids = append(ids, m.UserID)
	}
	for _, expense := range expenses {
		ids = append(ids, expense.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Error("GetUsersByIDs failed", "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to resolve users")
	}

	return calculator.GroupBalances(expenses, splits, users), nil
}

func (s *SettlementService) getSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		slog.Error("GetSettlement failed", "settlement_id", settlementID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load settlement")
	}
	if settlement == nil {
		return nil, apperr.New(apperr.NotFound, "settlement not found: %s", settlementID)
	}
	return settlement, nil
}
