package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/config"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

const (
	sandboxAPIBase = "https://api.sandbox.paypal.com"
	liveAPIBase    = "https://api.paypal.com"
)

// PayPal implements Gateway against the PayPal REST payments API: a
// client-credentials token, a sale-intent payment create, and an execute call
// with the payer id the provider hands back on redirect.
type PayPal struct {
	cfg config.PayPalConfig

	// APIBase overrides the provider endpoint; tests point it at a local
	// server. Empty selects sandbox/live from cfg.Mode.
	APIBase string

	client *http.Client
}

func NewPayPal(cfg config.PayPalConfig) *PayPal {
	return &PayPal{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PayPal) apiBase() string {
	if p.APIBase != "" {
		return p.APIBase
	}
	if p.cfg.Mode == "live" {
		return liveAPIBase
	}
	return sandboxAPIBase
}

func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return "", ErrNotConfigured
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase()+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request rejected: %s", readError(resp.Body))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return body.AccessToken, nil
}

type paypalAmount struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type paypalItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalPayment struct {
	ID    string `json:"id"`
	Payer struct {
		PayerInfo struct {
			PayerID string `json:"payer_id"`
		} `json:"payer_info"`
	} `json:"payer"`
	Transactions []struct {
		Amount           paypalAmount `json:"amount"`
		RelatedResources []struct {
			Sale struct {
				ID string `json:"id"`
			} `json:"sale"`
		} `json:"related_resources"`
	} `json:"transactions"`
	Links []paypalLink `json:"links"`
}

func (p *PayPal) Begin(ctx context.Context, order *models.Order) (string, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		if err == ErrNotConfigured {
			return "", err
		}
		return "", &Error{Phase: PhaseSetup, Cause: err}
	}

	items := make([]paypalItem, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = "Product"
		}
		items = append(items, paypalItem{
			Name:     name,
			SKU:      fmt.Sprintf("%d", item.ProductID),
			Price:    item.UnitPrice.StringFixed(2),
			Currency: "USD",
			Quantity: item.Quantity,
		})
	}

	payload := map[string]interface{}{
		"intent": "sale",
		"payer":  map[string]string{"payment_method": "paypal"},
		"redirect_urls": map[string]string{
			"return_url": fmt.Sprintf("%s/api/orders/paypal/success?orderId=%d", p.cfg.BaseURL, order.ID),
			"cancel_url": fmt.Sprintf("%s/api/orders/paypal/cancel?orderId=%d", p.cfg.BaseURL, order.ID),
		},
		"transactions": []map[string]interface{}{{
			"item_list": map[string]interface{}{"items": items},
			"amount": paypalAmount{
				Currency: "USD",
				Total:    order.TotalAmount.StringFixed(2),
			},
			"description": fmt.Sprintf("Order %s", order.OrderNumber),
		}},
	}

	payment, err := p.post(ctx, token, "/v1/payments/payment", payload)
	if err != nil {
		return "", &Error{Phase: PhaseSetup, Cause: err}
	}

	for _, link := range payment.Links {
		if link.Rel == "approval_url" {
			return link.Href, nil
		}
	}

	return "", &Error{Phase: PhaseSetup, Cause: fmt.Errorf("no approval_url in provider response")}
}

func (p *PayPal) Finalize(ctx context.Context, paymentID, payerID string, order *models.Order) (*Receipt, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		if err == ErrNotConfigured {
			return nil, err
		}
		return nil, &Error{Phase: PhaseExecute, Cause: err}
	}

	payload := map[string]interface{}{
		"payer_id": payerID,
		"transactions": []map[string]interface{}{{
			"amount": paypalAmount{
				Currency: "USD",
				Total:    order.TotalAmount.StringFixed(2),
			},
		}},
	}

	payment, err := p.post(ctx, token, "/v1/payments/payment/"+url.PathEscape(paymentID)+"/execute", payload)
	if err != nil {
		return nil, &Error{Phase: PhaseExecute, Cause: err}
	}

	receipt := &Receipt{
		PaymentID: payment.ID,
		PayerID:   payment.Payer.PayerInfo.PayerID,
	}
	if receipt.PayerID == "" {
		receipt.PayerID = payerID
	}
	if len(payment.Transactions) > 0 {
		tx := payment.Transactions[0]
		receipt.Currency = tx.Amount.Currency
		if amount, err := decimal.NewFromString(tx.Amount.Total); err == nil {
			receipt.Amount = amount
		}
		if len(tx.RelatedResources) > 0 {
			receipt.TransactionID = tx.RelatedResources[0].Sale.ID
		}
	}

	return receipt, nil
}

func (p *PayPal) post(ctx context.Context, token, path string, payload interface{}) (*paypalPayment, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase()+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("provider rejected %s: %s", path, readError(resp.Body))
	}

	payment := &paypalPayment{}
	if err := json.NewDecoder(resp.Body).Decode(payment); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return payment, nil
}

func readError(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty error body"
	}
	return msg
}
