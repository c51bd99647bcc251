package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MohamedWael200/APi-eCommerce/internal/config"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:          7,
		OrderNumber: "ORD-1-ABC123",
		TotalAmount: decimal.NewFromInt(20),
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		},
	}
}

func newTestPayPal(serverURL string) *PayPal {
	gateway := NewPayPal(config.PayPalConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      "http://localhost:3000",
	})
	gateway.APIBase = serverURL
	return gateway
}

func TestPayPalBegin(t *testing.T) {
	var createReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case "/v1/payments/payment":
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Expected bearer token, got %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
				t.Errorf("Decode create request: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "PAY-1",
				"links": []map[string]string{
					{"rel": "self", "href": "https://example.com/self"},
					{"rel": "approval_url", "href": "https://example.com/approve"},
				},
			})
		default:
			t.Errorf("Unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	gateway := newTestPayPal(server.URL)

	redirectURL, err := gateway.Begin(context.Background(), testOrder())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if redirectURL != "https://example.com/approve" {
		t.Errorf("Expected approval URL, got %q", redirectURL)
	}

	transactions := createReq["transactions"].([]interface{})
	amount := transactions[0].(map[string]interface{})["amount"].(map[string]interface{})
	if amount["total"] != "20.00" {
		t.Errorf("Expected total 20.00, got %v", amount["total"])
	}
	if amount["currency"] != "USD" {
		t.Errorf("Expected currency USD, got %v", amount["currency"])
	}

	redirects := createReq["redirect_urls"].(map[string]interface{})
	if redirects["return_url"] != "http://localhost:3000/api/orders/paypal/success?orderId=7" {
		t.Errorf("Unexpected return_url %v", redirects["return_url"])
	}
}

func TestPayPalBeginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		http.Error(w, `{"name":"VALIDATION_ERROR"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	gateway := newTestPayPal(server.URL)

	_, err := gateway.Begin(context.Background(), testOrder())
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("Expected gateway error, got: %v", err)
	}
	if gwErr.Phase != PhaseSetup {
		t.Errorf("Expected setup phase, got %s", gwErr.Phase)
	}
}

func TestPayPalBeginNoApprovalURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "PAY-1"})
	}))
	defer server.Close()

	gateway := newTestPayPal(server.URL)

	if _, err := gateway.Begin(context.Background(), testOrder()); err == nil {
		t.Fatal("Expected error when provider omits the approval link")
	}
}

func TestPayPalFinalize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case "/v1/payments/payment/PAY-1/execute":
			var req map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Decode execute request: %v", err)
			}
			if req["payer_id"] != "PAYER-9" {
				t.Errorf("Expected payer_id PAYER-9, got %v", req["payer_id"])
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "PAY-1",
				"payer": map[string]interface{}{"payer_info": map[string]string{"payer_id": "PAYER-9"}},
				"transactions": []map[string]interface{}{{
					"amount": map[string]string{"currency": "USD", "total": "20.00"},
					"related_resources": []map[string]interface{}{
						{"sale": map[string]string{"id": "SALE-55"}},
					},
				}},
			})
		default:
			t.Errorf("Unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	gateway := newTestPayPal(server.URL)

	receipt, err := gateway.Finalize(context.Background(), "PAY-1", "PAYER-9", testOrder())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if receipt.PaymentID != "PAY-1" {
		t.Errorf("Expected payment PAY-1, got %s", receipt.PaymentID)
	}
	if receipt.PayerID != "PAYER-9" {
		t.Errorf("Expected payer PAYER-9, got %s", receipt.PayerID)
	}
	if receipt.TransactionID != "SALE-55" {
		t.Errorf("Expected transaction SALE-55, got %s", receipt.TransactionID)
	}
	if !receipt.Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected amount 20, got %s", receipt.Amount)
	}
	if receipt.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", receipt.Currency)
	}
}

func TestPayPalFinalizeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		http.Error(w, `{"name":"INSTRUMENT_DECLINED"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	gateway := newTestPayPal(server.URL)

	_, err := gateway.Finalize(context.Background(), "PAY-1", "PAYER-9", testOrder())
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("Expected gateway error, got: %v", err)
	}
	if gwErr.Phase != PhaseExecute {
		t.Errorf("Expected execute phase, got %s", gwErr.Phase)
	}
}

func TestPayPalNotConfigured(t *testing.T) {
	gateway := NewPayPal(config.PayPalConfig{})

	if _, err := gateway.Begin(context.Background(), testOrder()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected not-configured error, got: %v", err)
	}
	if _, err := gateway.Finalize(context.Background(), "PAY-1", "PAYER-9", testOrder()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected not-configured error, got: %v", err)
	}
}
