package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kharcha/kharcha/internal/auth"
	"github.com/kharcha/kharcha/internal/notify"
	"github.com/kharcha/kharcha/internal/service"
	"github.com/kharcha/kharcha/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "kharcha-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	hub := notify.NewHub()
	engine := notify.NewEngine(store, hub)
	groups := service.NewGroupService(store)
	handler := New(
		authenticator,
		jwtManager,
		groups,
		service.NewExpenseService(store, engine, groups),
		service.NewSettlementService(store, engine, groups),
		service.NewLedgerService(store),
		hub,
	)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

// call sends a JSON request and decodes the JSON response into out (when
// out is non-nil). Returns the status code.
func call(t *testing.T, server *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, server.URL+path, &reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response (%s %s -> %d): %v", method, path, resp.StatusCode, err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, server *httptest.Server, email, name string) (token, userID string) {
	t.Helper()

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"displayName": name,
		"password":    "correct-horse",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}
	return resp.Token, resp.User.ID
}

func TestSettlementFlow(t *testing.T) {
	server := newTestServer(t)

	aliceToken, aliceID := register(t, server, "alice@example.com", "Alice")
	bobToken, bobID := register(t, server, "bob@example.com", "Bob")

	// Alice sets her UPI address so payment links can point at her.
	if status := call(t, server, http.MethodPatch, "/api/users/me/upi", aliceToken,
		map[string]string{"upiAddress": "alice@okbank"}, nil); status != http.StatusOK {
		t.Fatalf("set upi returned %d", status)
	}

	// Alice creates a group and adds Bob.
	var group struct {
		ID string `json:"id"`
	}
	if status := call(t, server, http.MethodPost, "/api/groups", aliceToken,
		map[string]string{"name": "Roommates"}, &group); status != http.StatusCreated {
		t.Fatalf("create group returned %d", status)
	}
	if status := call(t, server, http.MethodPost, "/api/groups/"+group.ID+"/members", aliceToken,
		map[string]string{"userId": bobID}, nil); status != http.StatusOK {
		t.Fatalf("add member returned %d", status)
	}

	// Alice pays 100 for the group, split equally.
	if status := call(t, server, http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"groupId":       group.ID,
		"description":   "Groceries",
		"category":      "Food",
		"amount":        "100",
		"paymentMethod": "UPI",
	}, nil); status != http.StatusCreated {
		t.Fatalf("create expense returned %d", status)
	}

	// Balances: Alice +50, Bob -50.
	var balances []struct {
		UserID  string `json:"userId"`
		Balance string `json:"balance"`
		Status  string `json:"status"`
	}
	if status := call(t, server, http.MethodGet, "/api/settlements/group/"+group.ID+"/balances",
		bobToken, nil, &balances); status != http.StatusOK {
		t.Fatalf("balances returned %d", status)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	for _, b := range balances {
		switch b.UserID {
		case aliceID:
			if b.Balance != "50" || b.Status != "owed" {
				t.Errorf("alice balance = %s/%s, want 50/owed", b.Balance, b.Status)
			}
		case bobID:
			if b.Balance != "-50" || b.Status != "owes" {
				t.Errorf("bob balance = %s/%s, want -50/owes", b.Balance, b.Status)
			}
		}
	}

	// Bob requests a settlement toward Alice.
	var settlement struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if status := call(t, server, http.MethodPost, "/api/settlements/request", bobToken, map[string]any{
		"groupId":  group.ID,
		"toUserId": aliceID,
		"amount":   "50",
	}, &settlement); status != http.StatusCreated {
		t.Fatalf("request settlement returned %d", status)
	}
	if settlement.Status != "pending" {
		t.Errorf("settlement status = %s, want pending", settlement.Status)
	}

	// A duplicate request reports the existing settlement's ID.
	var conflict struct {
		Error      string `json:"error"`
		ResourceID string `json:"resourceId"`
	}
	if status := call(t, server, http.MethodPost, "/api/settlements/request", bobToken, map[string]any{
		"groupId":  group.ID,
		"toUserId": aliceID,
		"amount":   "25",
	}, &conflict); status != http.StatusBadRequest {
		t.Fatalf("duplicate request returned %d, want 400", status)
	}
	if conflict.ResourceID != settlement.ID {
		t.Errorf("conflict resourceId = %s, want %s", conflict.ResourceID, settlement.ID)
	}

	// Bob fetches the UPI link.
	var link struct {
		UPILink    string `json:"upiLink"`
		PayeeUPIID string `json:"payeeUpiId"`
	}
	if status := call(t, server, http.MethodPost, "/api/settlements/"+settlement.ID+"/upi-link",
		bobToken, nil, &link); status != http.StatusOK {
		t.Fatalf("upi-link returned %d", status)
	}
	if link.PayeeUPIID != "alice@okbank" || link.UPILink == "" {
		t.Errorf("unexpected link payload: %+v", link)
	}

	// Alice cannot mark Bob's settlement paid.
	if status := call(t, server, http.MethodPost, "/api/settlements/"+settlement.ID+"/pay",
		aliceToken, map[string]string{"paymentMethod": "UPI", "transactionId": "TXN1"}, nil); status != http.StatusForbidden {
		t.Fatalf("pay as creditor returned %d, want 403", status)
	}

	// Bob marks it paid.
	var paid struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	if status := call(t, server, http.MethodPost, "/api/settlements/"+settlement.ID+"/pay",
		bobToken, map[string]string{"paymentMethod": "UPI", "transactionId": "TXN1"}, &paid); status != http.StatusOK {
		t.Fatalf("pay returned %d", status)
	}
	if paid.Status != "paid" || paid.TransactionID != "TXN1" {
		t.Errorf("paid settlement = %+v", paid)
	}

	// Paying again is a conflict, not a second payment.
	if status := call(t, server, http.MethodPost, "/api/settlements/"+settlement.ID+"/pay",
		bobToken, map[string]string{"paymentMethod": "UPI", "transactionId": "TXN2"}, nil); status != http.StatusBadRequest {
		t.Fatalf("double pay returned %d, want 400", status)
	}

	// Alice sees the payment notification in her feed.
	var notifications []struct {
		Type string `json:"type"`
	}
	if status := call(t, server, http.MethodGet, "/api/notifications", aliceToken,
		nil, &notifications); status != http.StatusOK {
		t.Fatalf("notifications returned %d", status)
	}
	types := make(map[string]bool)
	for _, n := range notifications {
		types[n.Type] = true
	}
	if !types["payment_request"] || !types["payment_received"] {
		t.Errorf("notification types = %v, want payment_request and payment_received", types)
	}
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	if status := call(t, server, http.MethodGet, "/api/groups", "", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("unauthenticated request returned %d, want 401", status)
	}
	if status := call(t, server, http.MethodGet, "/api/groups", "not-a-token", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("bad token returned %d, want 401", status)
	}
}

func TestRegisterValidation(t *testing.T) {
	server := newTestServer(t)

	t.Run("weak password", func(t *testing.T) {
		status := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":       "a@example.com",
			"displayName": "A",
			"password":    "short",
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("weak password returned %d, want 400", status)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		register(t, server, "dup@example.com", "Dup")
		status := call(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":       "dup@example.com",
			"displayName": "Dup Again",
			"password":    "correct-horse",
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("duplicate email returned %d, want 400", status)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		register(t, server, "c@example.com", "C")
		status := call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "c@example.com",
			"password": "wrong-password",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("bad login returned %d, want 401", status)
		}
	})
}
