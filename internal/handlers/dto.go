package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/calculator"
	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/service"
)

// Response shapes. Amounts serialize as decimal strings, timestamps as
// Unix seconds.

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	UPIAddress  string `json:"upiAddress,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		UPIAddress:  u.UPIAddress,
		CreatedAt:   u.CreatedAt,
	}
}

type groupMemberResponse struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

type groupResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatedBy string                `json:"createdBy"`
	Members   []groupMemberResponse `json:"members"`
	CreatedAt int64                 `json:"createdAt"`
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]groupMemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = groupMemberResponse{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
	}
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toGroupResponses(groups []*models.Group) []groupResponse {
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	return out
}

type expenseResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	GroupID       string          `json:"groupId,omitempty"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Date          int64           `json:"date"`
	CreatedAt     int64           `json:"createdAt"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		GroupID:       e.GroupID,
		Description:   e.Description,
		Category:      e.Category,
		Amount:        e.Amount,
		PaymentMethod: e.PaymentMethod,
		Date:          e.Date,
		CreatedAt:     e.CreatedAt,
	}
}

func toExpenseResponses(expenses []*models.Expense) []expenseResponse {
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	return out
}

type incomeResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Source    string          `json:"source"`
	Amount    decimal.Decimal `json:"amount"`
	Date      int64           `json:"date"`
	CreatedAt int64           `json:"createdAt"`
}

func toIncomeResponse(in *models.Income) incomeResponse {
	return incomeResponse{
		ID:        in.ID,
		UserID:    in.UserID,
		Source:    in.Source,
		Amount:    in.Amount,
		Date:      in.Date,
		CreatedAt: in.CreatedAt,
	}
}

type budgetResponse struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

func toBudgetResponse(b *models.Budget) budgetResponse {
	return budgetResponse{
		ID:       b.ID,
		UserID:   b.UserID,
		Category: b.Category,
		Limit:    b.Limit,
		Month:    b.Month,
		Year:     b.Year,
	}
}

type notificationResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Message      string          `json:"message"`
	Category     string          `json:"category,omitempty"`
	BudgetLimit  decimal.Decimal `json:"budgetLimit"`
	CurrentSpent decimal.Decimal `json:"currentSpent"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsRead       bool            `json:"isRead"`
	CreatedAt    int64           `json:"createdAt"`
}

func toNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Message:      n.Message,
		Category:     n.Category,
		BudgetLimit:  n.BudgetLimit,
		CurrentSpent: n.CurrentSpent,
		Percentage:   n.Percentage,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
	}
}

type balanceResponse struct {
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
	UserEmail string          `json:"userEmail"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
}

func toBalanceResponses(balances []calculator.MemberBalance) []balanceResponse {
	out := make([]balanceResponse, len(balances))
	for i, b := range balances {
		out[i] = balanceResponse{
			UserID:    b.UserID,
			UserName:  b.UserName,
			UserEmail: b.UserEmail,
			Balance:   b.Balance,
			Status:    b.Status,
		}
	}
	return out
}

type settlementResponse struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"groupId"`
	FromUserID    string          `json:"fromUserId"`
	FromUserName  string          `json:"fromUserName,omitempty"`
	FromUserEmail string          `json:"fromUserEmail,omitempty"`
	ToUserID      string          `json:"toUserId"`
	ToUserName    string          `json:"toUserName,omitempty"`
	ToUserEmail   string          `json:"toUserEmail,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	PaidAt        int64           `json:"paidAt,omitempty"`
	CreatedAt     int64           `json:"createdAt"`
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:            s.ID,
		GroupID:       s.GroupID,
		FromUserID:    s.FromUserID,
		ToUserID:      s.ToUserID,
		Amount:        s.Amount,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		TransactionID: s.TransactionID,
		PaidAt:        s.PaidAt,
		CreatedAt:     s.CreatedAt,
	}
}

func toSettlementViewResponses(views []service.SettlementView) []settlementResponse {
	out := make([]settlementResponse, len(views))
	for i, v := range views {
		resp := toSettlementResponse(v.Settlement)
		resp.FromUserName = v.FromUserName
		resp.FromUserEmail = v.FromUserEmail
		resp.ToUserName = v.ToUserName
		resp.ToUserEmail = v.ToUserEmail
		out[i] = resp
	}
	return out
}

type paymentLinkResponse struct {
	UPILink      string          `json:"upiLink"`
	QRData       string          `json:"qrData"`
	Amount       decimal.Decimal `json:"amount"`
	PayeeName    string          `json:"payeeName"`
	PayeeUPIID   string          `json:"payeeUpiId"`
	SettlementID string          `json:"settlementId"`
}
