package checkout

import (
	"errors"
	"fmt"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidCoupon          = errors.New("invalid or expired coupon")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrPaymentNotPending      = errors.New("order is not awaiting payment")
	ErrForbidden              = errors.New("you don't have permission to update this order")

	// ErrPaymentSetupFailed means the provider rejected payment creation;
	// the provisional order was rolled back.
	ErrPaymentSetupFailed = errors.New("failed to create payment link")

	// ErrPaymentExecutionFailed means the provider rejected the approved
	// payment on finalize; the order was rolled back.
	ErrPaymentExecutionFailed = errors.New("payment execution failed")
)

// ProductUnavailableError reports a cart line whose product is archived.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductName)
}

// InsufficientStockError names the shortfall the customer hit.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// TransitionError reports a status change outside the lifecycle table.
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
