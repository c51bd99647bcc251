package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/shopspring/decimal"
)

// Gateway is the external payment capability the checkout workflow depends
// on. Begin sets up a payment for the order and returns the provider page the
// customer must approve it on; Finalize executes an approved payment for the
// order's frozen total. Implementations touch no local state.
type Gateway interface {
	Begin(ctx context.Context, order *models.Order) (redirectURL string, err error)
	Finalize(ctx context.Context, paymentID, payerID string, order *models.Order) (*Receipt, error)
}

// Receipt carries the provider's confirmation of an executed payment.
type Receipt struct {
	PaymentID     string
	PayerID       string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
}

// ErrNotConfigured means provider credentials are missing from the
// environment; no request was attempted.
var ErrNotConfigured = errors.New("payment gateway credentials not configured")

// Phase identifies which gateway call failed.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseExecute Phase = "execute"
)

// Error wraps a provider-side rejection or transport failure.
type Error struct {
	Phase Phase
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Phase, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
