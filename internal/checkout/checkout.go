// Package checkout orchestrates the order-creation and payment workflow:
// cart validation, stock reservation, order persistence, the deferred
// payment-gateway round trip, and the status lifecycle.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/auth"
	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/payment"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service struct {
	db      *sql.DB
	gateway payment.Gateway
	log     *logrus.Logger
}

func NewService(db *sql.DB, gateway payment.Gateway, log *logrus.Logger) *Service {
	return &Service{db: db, gateway: gateway, log: log}
}

type CreateOrderInput struct {
	ShippingAddress string
	PaymentMethod   string
	CouponCode      string
}

type CreateOrderResult struct {
	Order *models.Order `json:"order"`
	// PaymentURL is the provider approval page for deferred methods, empty
	// otherwise.
	PaymentURL string `json:"payment_url,omitempty"`
}

// CreateOrder turns the customer's cart into an order. Immediate payment
// methods reserve stock and clear the cart inside the creation transaction;
// the deferred method leaves both untouched until the provider confirms.
func (s *Service) CreateOrder(ctx context.Context, principal auth.Principal, in CreateOrderInput) (*CreateOrderResult, error) {
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if in.ShippingAddress == "" {
		return nil, ErrMissingShippingAddress
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	if in.CouponCode != "" {
		coupon, err := store.GetCouponByCode(ctx, s.db, in.CouponCode)
		if err != nil {
			if errors.Is(err, database.ErrCouponNotFound) {
				return nil, ErrInvalidCoupon
			}
			return nil, err
		}
		if !coupon.Valid(time.Now()) {
			return nil, ErrInvalidCoupon
		}
	}

	deferred := models.DeferredPaymentMethod(in.PaymentMethod)

	paymentStatus := models.PaymentStatusUnpaid
	if deferred {
		paymentStatus = models.PaymentStatusPending
	}

	order := &models.Order{
		OrderNumber:     store.GenerateOrderNumber(),
		UserID:          principal.UserID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   paymentStatus,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
	}

	err := database.WithRetry(ctx, s.db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		lines, err := store.CartLinesForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		totalAmount := decimal.Zero
		vendorIDs := make(map[int64]struct{})
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			if line.IsArchived {
				return &ProductUnavailableError{ProductName: line.ProductName}
			}
			if line.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductName: line.ProductName,
					Available:   line.Stock,
					Requested:   line.Quantity,
				}
			}

			subtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			totalAmount = totalAmount.Add(subtotal)
			vendorIDs[line.VendorID] = struct{}{}

			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				VendorID:    line.VendorID,
				Quantity:    line.Quantity,
				UnitPrice:   line.Price,
				Subtotal:    subtotal,
			})
		}

		order.TotalAmount = totalAmount
		order.VendorID = singleVendor(vendorIDs)

		// Deferred methods skip the decrement here; the provider may still
		// fail, and stock is only taken once payment is confirmed. The
		// product rows are locked above, so the conditional decrement cannot
		// race the availability check within this transaction.
		if !deferred {
			for _, item := range items {
				if err := store.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := store.InsertOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := store.InsertOrderItems(ctx, tx, order.ID, items); err != nil {
			return err
		}
		order.Items = items

		if !deferred {
			if err := store.DeleteCart(ctx, tx, principal.UserID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateOrderResult{Order: order}

	if deferred {
		redirectURL, err := s.gateway.Begin(ctx, order)
		if err != nil {
			// Compensate: the provisional order must not survive a failed
			// payment setup. Stock and cart were never touched.
			if delErr := store.DeleteOrder(ctx, s.db, order.ID); delErr != nil {
				s.log.WithError(delErr).WithField("order_id", order.ID).
					Error("failed to roll back order after payment setup failure")
			}
			s.log.WithError(err).WithField("order_id", order.ID).Error("payment setup failed")
			return nil, errors.Join(ErrPaymentSetupFailed, err)
		}
		result.PaymentURL = redirectURL
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_method": order.PaymentMethod,
		"total_amount":   order.TotalAmount.String(),
	}).Info("order created")

	return result, nil
}

// singleVendor returns the vendor id when every line shares one, else nil:
// mixed-vendor orders carry no single vendor owner.
func singleVendor(vendorIDs map[int64]struct{}) *int64 {
	if len(vendorIDs) != 1 {
		return nil
	}
	for id := range vendorIDs {
		return &id
	}
	return nil
}

// FinalizePayment executes an approved deferred payment. Only here does a
// deferred order's stock decrement and cart deletion happen; a provider
// rejection rolls the order back entirely.
func (s *Service) FinalizePayment(ctx context.Context, orderID int64, paymentID, payerID string) (*models.Order, error) {
	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	// A paid order must never be touched again: a replayed success callback
	// would re-execute at the provider, fail, and compensate away a completed
	// sale. Same for orders that never went through the provider at all.
	if !models.DeferredPaymentMethod(order.PaymentMethod) || order.PaymentStatus != models.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	receipt, err := s.gateway.Finalize(ctx, paymentID, payerID, order)
	if err != nil {
		if delErr := store.DeleteOrder(ctx, s.db, orderID); delErr != nil {
			s.log.WithError(delErr).WithField("order_id", orderID).
				Error("failed to roll back order after payment execution failure")
		}
		s.log.WithError(err).WithField("order_id", orderID).Error("payment execution failed")
		return nil, errors.Join(ErrPaymentExecutionFailed, err)
	}

	err = database.WithRetry(ctx, s.db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		for _, item := range order.Items {
			if err := store.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := store.DeleteCart(ctx, tx, order.UserID); err != nil {
			return err
		}

		return store.MarkOrderPaid(ctx, tx, orderID, &models.PaymentDetails{
			PaymentID:     receipt.PaymentID,
			PayerID:       receipt.PayerID,
			PaymentMethod: order.PaymentMethod,
			Amount:        receipt.Amount,
			Currency:      receipt.Currency,
			TransactionID: receipt.TransactionID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       orderID,
		"transaction_id": receipt.TransactionID,
	}).Info("deferred payment finalized")

	return store.GetOrder(ctx, s.db, orderID)
}

// CancelPayment handles the customer aborting on the provider's page before
// finalize. The provisional order is deleted; stock and cart were never
// touched, so there is nothing else to undo. Canceling an already-removed
// order is a no-op.
func (s *Service) CancelPayment(ctx context.Context, orderID int64) error {
	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return nil
		}
		return err
	}

	if !models.DeferredPaymentMethod(order.PaymentMethod) || order.PaymentStatus != models.PaymentStatusPending {
		return ErrPaymentNotPending
	}

	if err := store.DeleteOrder(ctx, s.db, orderID); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return nil
		}
		return err
	}

	s.log.WithField("order_id", orderID).Info("payment canceled, provisional order removed")
	return nil
}

// UpdateStatus moves an order along the lifecycle table. Admins may update
// any order; vendors only orders they own as single vendor or via a line
// item's product. A transition to canceled restocks every line exactly once,
// in the same transaction as the status write.
func (s *Service) UpdateStatus(ctx context.Context, principal auth.Principal, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	if !s.canUpdate(principal, order) {
		return nil, ErrForbidden
	}

	if !models.CanTransition(order.Status, status) {
		return nil, &TransitionError{From: order.Status, To: status}
	}

	err = database.WithRetry(ctx, s.db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		if err := store.UpdateOrderStatus(ctx, tx, orderID, status); err != nil {
			return err
		}

		// Restock only orders that actually reserved stock: a deferred order
		// that was never paid took nothing from inventory.
		reserved := !models.DeferredPaymentMethod(order.PaymentMethod) || order.PaymentStatus == models.PaymentStatusPaid
		if status == models.OrderStatusCanceled && reserved {
			for _, item := range order.Items {
				if err := store.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	}).Info("order status updated")

	return store.GetOrder(ctx, s.db, orderID)
}

func (s *Service) canUpdate(principal auth.Principal, order *models.Order) bool {
	if principal.IsAdmin() {
		return true
	}
	if !principal.IsVendor() {
		return false
	}
	if order.VendorID != nil && *order.VendorID == principal.UserID {
		return true
	}
	for _, item := range order.Items {
		if item.VendorID == principal.UserID {
			return true
		}
	}
	return false
}
