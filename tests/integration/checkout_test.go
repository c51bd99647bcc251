package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/auth"
	"github.com/MohamedWael200/APi-eCommerce/internal/checkout"
	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/payment"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakeGateway records provider calls and answers with canned results, so the
// workflow around it can be driven through every branch.
type fakeGateway struct {
	beginErr    error
	finalizeErr error

	beginOrders []*models.Order
}

func (g *fakeGateway) Begin(ctx context.Context, order *models.Order) (string, error) {
	g.beginOrders = append(g.beginOrders, order)
	if g.beginErr != nil {
		return "", g.beginErr
	}
	return "https://sandbox.example.com/approve/1", nil
}

func (g *fakeGateway) Finalize(ctx context.Context, paymentID, payerID string, order *models.Order) (*payment.Receipt, error) {
	if g.finalizeErr != nil {
		return nil, g.finalizeErr
	}
	return &payment.Receipt{
		PaymentID:     paymentID,
		PayerID:       payerID,
		TransactionID: "TX-1",
		Amount:        order.TotalAmount,
		Currency:      "USD",
	}, nil
}

func newTestService(db *sql.DB, gateway payment.Gateway) *checkout.Service {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return checkout.NewService(db, gateway, log)
}

func principalFor(user *models.User) auth.Principal {
	return auth.Principal{UserID: user.ID, Role: user.Role}
}

func TestCreateOrderCash(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "electronics")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Widget", 10, 5)
	addToCart(t, db, customer.ID, product.ID, 2)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	order := result.Order
	if result.PaymentURL != "" {
		t.Errorf("Cash order should have no payment URL, got %q", result.PaymentURL)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}
	if order.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("Expected payment status unpaid, got %s", order.PaymentStatus)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected total 20, got %s", order.TotalAmount)
	}
	if order.VendorID == nil || *order.VendorID != vendor.ID {
		t.Errorf("Expected vendor %d on order, got %v", vendor.ID, order.VendorID)
	}
	if len(order.Items) != 1 {
		t.Fatalf("Expected 1 order item, got %d", len(order.Items))
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 3 {
		t.Errorf("Expected stock 3, got %d", productAfter.Stock)
	}

	if _, err := store.GetCart(ctx, db, customer.ID); !errors.Is(err, database.ErrCartNotFound) {
		t.Errorf("Cart should be gone after checkout, got: %v", err)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	customer := createTestUser(t, db, "empty@example.com", models.RoleCustomer)
	svc := newTestService(db, &fakeGateway{})

	_, err := svc.CreateOrder(context.Background(), principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
	})
	if !errors.Is(err, checkout.ErrEmptyCart) {
		t.Errorf("Expected empty cart error, got: %v", err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor2@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer2@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "books")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Scarce", 10, 3)
	addToCart(t, db, customer.ID, product.ID, 3)

	// Stock shrinks between carting and checkout.
	if _, err := db.Exec(`UPDATE products SET stock = 1 WHERE id = $1`, product.ID); err != nil {
		t.Fatalf("Shrink stock: %v", err)
	}

	svc := newTestService(db, &fakeGateway{})

	_, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
	})

	var stockErr *checkout.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected insufficient stock error, got: %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 3 {
		t.Errorf("Expected available 1 requested 3, got %d/%d", stockErr.Available, stockErr.Requested)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 1 {
		t.Errorf("Stock should remain 1, got %d", productAfter.Stock)
	}
}

func TestCreateOrderDeferredPayment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor3@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer3@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "games")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Console", 10, 5)
	addToCart(t, db, customer.ID, product.ID, 2)

	gateway := &fakeGateway{}
	svc := newTestService(db, gateway)

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if result.PaymentURL == "" {
		t.Error("Deferred order should carry the approval URL")
	}
	if len(gateway.beginOrders) != 1 {
		t.Fatalf("Expected 1 gateway setup call, got %d", len(gateway.beginOrders))
	}
	if !gateway.beginOrders[0].TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Gateway saw total %s, want 20", gateway.beginOrders[0].TotalAmount)
	}

	// Stock and cart stay untouched until the provider confirms.
	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 5 {
		t.Errorf("Stock should remain 5 before payment, got %d", productAfter.Stock)
	}
	if _, err := store.GetCart(ctx, db, customer.ID); err != nil {
		t.Errorf("Cart should survive until payment, got: %v", err)
	}
}

func TestCreateOrderGatewaySetupFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor4@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer4@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "toys")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Kite", 10, 5)
	addToCart(t, db, customer.ID, product.ID, 1)

	gateway := &fakeGateway{beginErr: &payment.Error{Phase: payment.PhaseSetup, Cause: errors.New("declined")}}
	svc := newTestService(db, gateway)

	_, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if !errors.Is(err, checkout.ErrPaymentSetupFailed) {
		t.Fatalf("Expected payment setup failure, got: %v", err)
	}

	// The provisional order must be compensated away.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		t.Fatalf("Count orders: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no orders left, got %d", count)
	}
}

func TestFinalizePayment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor5@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer5@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "music")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Guitar", 100, 4)
	addToCart(t, db, customer.ID, product.ID, 2)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	order, err := svc.FinalizePayment(ctx, result.Order.ID, "PAY-1", "PAYER-1")
	if err != nil {
		t.Fatalf("Finalize payment: %v", err)
	}

	if order.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("Expected payment status paid, got %s", order.PaymentStatus)
	}
	if order.Status != models.OrderStatusConfirmed {
		t.Errorf("Expected status confirmed, got %s", order.Status)
	}
	if order.PaymentDetails == nil || order.PaymentDetails.TransactionID != "TX-1" {
		t.Errorf("Expected recorded transaction TX-1, got %+v", order.PaymentDetails)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 2 {
		t.Errorf("Expected stock 2 after payment, got %d", productAfter.Stock)
	}

	if _, err := store.GetCart(ctx, db, customer.ID); !errors.Is(err, database.ErrCartNotFound) {
		t.Errorf("Cart should be gone after payment, got: %v", err)
	}
}

func TestFinalizePaymentExecutionFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor6@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer6@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "garden")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Shovel", 10, 5)
	addToCart(t, db, customer.ID, product.ID, 1)

	gateway := &fakeGateway{}
	svc := newTestService(db, gateway)

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	gateway.finalizeErr = &payment.Error{Phase: payment.PhaseExecute, Cause: errors.New("instrument declined")}

	_, err = svc.FinalizePayment(ctx, result.Order.ID, "PAY-2", "PAYER-2")
	if !errors.Is(err, checkout.ErrPaymentExecutionFailed) {
		t.Fatalf("Expected payment execution failure, got: %v", err)
	}

	if _, err := store.GetOrder(ctx, db, result.Order.ID); !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Order should be removed after failed execution, got: %v", err)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 5 {
		t.Errorf("Stock should remain 5, got %d", productAfter.Stock)
	}
}

func TestCancelPayment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor7@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer7@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "sports")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Ball", 10, 5)
	addToCart(t, db, customer.ID, product.ID, 1)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if err := svc.CancelPayment(ctx, result.Order.ID); err != nil {
		t.Fatalf("Cancel payment: %v", err)
	}

	if _, err := store.GetOrder(ctx, db, result.Order.ID); !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Order should be removed after cancel, got: %v", err)
	}

	// Cancel arriving twice is harmless.
	if err := svc.CancelPayment(ctx, result.Order.ID); err != nil {
		t.Errorf("Second cancel should be a no-op, got: %v", err)
	}
}

func TestFinalizePaymentReplay(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor13@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer13@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "audio")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Speaker", 40, 6)
	addToCart(t, db, customer.ID, product.ID, 2)

	gateway := &fakeGateway{}
	svc := newTestService(db, gateway)

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodPayPal,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := svc.FinalizePayment(ctx, result.Order.ID, "PAY-1", "PAYER-1"); err != nil {
		t.Fatalf("Finalize payment: %v", err)
	}

	// A replayed success callback must not reach the provider again, and
	// above all must not delete the paid order.
	gateway.finalizeErr = &payment.Error{Phase: payment.PhaseExecute, Cause: errors.New("duplicate execute")}

	if _, err := svc.FinalizePayment(ctx, result.Order.ID, "PAY-1", "PAYER-1"); !errors.Is(err, checkout.ErrPaymentNotPending) {
		t.Fatalf("Expected payment-not-pending error on replay, got: %v", err)
	}

	order, err := store.GetOrder(ctx, db, result.Order.ID)
	if err != nil {
		t.Fatalf("Paid order must survive a replayed callback: %v", err)
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("Expected order to stay paid, got %s", order.PaymentStatus)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 4 {
		t.Errorf("Stock should stay at 4 after replay, got %d", productAfter.Stock)
	}

	// A cancel callback arriving after payment must not delete it either.
	if err := svc.CancelPayment(ctx, result.Order.ID); !errors.Is(err, checkout.ErrPaymentNotPending) {
		t.Errorf("Expected payment-not-pending error on late cancel, got: %v", err)
	}
	if _, err := store.GetOrder(ctx, db, result.Order.ID); err != nil {
		t.Errorf("Paid order must survive a late cancel: %v", err)
	}
}

func TestFinalizePaymentImmediateMethod(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor14@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer14@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "tools")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Hammer", 15, 3)
	addToCart(t, db, customer.ID, product.ID, 1)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		PaymentMethod:   models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := svc.FinalizePayment(ctx, result.Order.ID, "PAY-1", "PAYER-1"); !errors.Is(err, checkout.ErrPaymentNotPending) {
		t.Errorf("Cash order must not be finalizable, got: %v", err)
	}
	if err := svc.CancelPayment(ctx, result.Order.ID); !errors.Is(err, checkout.ErrPaymentNotPending) {
		t.Errorf("Cash order must not be cancelable via the provider callback, got: %v", err)
	}
	if _, err := store.GetOrder(ctx, db, result.Order.ID); err != nil {
		t.Errorf("Cash order must survive provider callbacks: %v", err)
	}
}

func TestUpdateStatusRestocksOnCancel(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor8@example.com", models.RoleVendor)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	customer := createTestUser(t, db, "customer8@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "office")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Desk", 50, 10)
	addToCart(t, db, customer.ID, product.ID, 4)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	order, err := svc.UpdateStatus(ctx, principalFor(admin), result.Order.ID, models.OrderStatusCanceled)
	if err != nil {
		t.Fatalf("Cancel order: %v", err)
	}
	if order.Status != models.OrderStatusCanceled {
		t.Errorf("Expected status canceled, got %s", order.Status)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 10 {
		t.Errorf("Expected stock restored to 10, got %d", productAfter.Stock)
	}

	// Canceled is terminal, so a second cancel cannot restock again.
	_, err = svc.UpdateStatus(ctx, principalFor(admin), result.Order.ID, models.OrderStatusCanceled)
	var transitionErr *checkout.TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("Expected transition error, got: %v", err)
	}

	productFinal, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productFinal.Stock != 10 {
		t.Errorf("Stock should still be 10, got %d", productFinal.Stock)
	}
}

func TestUpdateStatusVendorScope(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor9@example.com", models.RoleVendor)
	otherVendor := createTestUser(t, db, "vendor10@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer9@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "kitchen")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Pan", 25, 6)
	addToCart(t, db, customer.ID, product.ID, 1)

	svc := newTestService(db, &fakeGateway{})

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, principalFor(otherVendor), result.Order.ID, models.OrderStatusConfirmed); !errors.Is(err, checkout.ErrForbidden) {
		t.Errorf("Foreign vendor should be rejected, got: %v", err)
	}

	order, err := svc.UpdateStatus(ctx, principalFor(vendor), result.Order.ID, models.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("Owning vendor update: %v", err)
	}
	if order.Status != models.OrderStatusConfirmed {
		t.Errorf("Expected status confirmed, got %s", order.Status)
	}
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor11@example.com", models.RoleVendor)
	category := createTestCategory(t, db, "rare")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Last Unit", 99, 1)

	concurrency := 2
	customers := make([]*models.User, concurrency)
	for i := 0; i < concurrency; i++ {
		customers[i] = createTestUser(t, db, fmt.Sprintf("racer%d@example.com", i), models.RoleCustomer)
		addToCart(t, db, customers[i].ID, product.ID, 1)
	}

	svc := newTestService(db, &fakeGateway{})

	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(customer *models.User) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
				ShippingAddress: "12 Main St",
			})
			results <- err
		}(customers[i])
	}

	wg.Wait()
	close(results)

	successCount := 0
	stockFailures := 0
	for err := range results {
		var stockErr *checkout.InsufficientStockError
		switch {
		case err == nil:
			successCount++
		case errors.As(err, &stockErr):
			stockFailures++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 1 {
		t.Errorf("Expected exactly 1 successful checkout, got %d", successCount)
	}
	if stockFailures != concurrency-1 {
		t.Errorf("Expected %d stock failures, got %d", concurrency-1, stockFailures)
	}

	productAfter, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if productAfter.Stock != 0 {
		t.Errorf("Expected stock 0, got %d", productAfter.Stock)
	}
}

func TestCheckoutWithCoupon(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	vendor := createTestUser(t, db, "vendor12@example.com", models.RoleVendor)
	customer := createTestUser(t, db, "customer12@example.com", models.RoleCustomer)
	category := createTestCategory(t, db, "deals")
	product := createTestProduct(t, db, vendor.ID, category.ID, "Bargain", 30, 5)
	addToCart(t, db, customer.ID, product.ID, 1)

	svc := newTestService(db, &fakeGateway{})

	_, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		CouponCode:      "NOPE1234",
	})
	if !errors.Is(err, checkout.ErrInvalidCoupon) {
		t.Fatalf("Expected invalid coupon error, got: %v", err)
	}

	coupon, err := store.CreateCoupon(ctx, db, "percentage", decimal.NewFromInt(10), 5,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create coupon: %v", err)
	}

	result, err := svc.CreateOrder(ctx, principalFor(customer), checkout.CreateOrderInput{
		ShippingAddress: "12 Main St",
		CouponCode:      coupon.Code,
	})
	if err != nil {
		t.Fatalf("Create order with coupon: %v", err)
	}
	if !result.Order.TotalAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Coupon must not change the charged total, got %s", result.Order.TotalAmount)
	}
}
