package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusCanceled, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCanceled, true},
		{OrderStatusProcessing, OrderStatusConfirmed, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCanceled, true},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusCanceled, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusCanceled, OrderStatusPending, false},
		{OrderStatusCanceled, OrderStatusCanceled, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled,
	} {
		if !ValidOrderStatus(status) {
			t.Errorf("Expected %s to be valid", status)
		}
	}

	if ValidOrderStatus("refunded") {
		t.Error("Unknown status should not be valid")
	}
}

func TestDeferredPaymentMethod(t *testing.T) {
	if !DeferredPaymentMethod(PaymentMethodPayPal) {
		t.Error("paypal should be deferred")
	}
	for _, method := range []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodStripe, PaymentMethodBankTransfer} {
		if DeferredPaymentMethod(method) {
			t.Errorf("%s should not be deferred", method)
		}
	}
}

func TestValidPaymentMethod(t *testing.T) {
	if !ValidPaymentMethod(PaymentMethodCash) {
		t.Error("cash should be a valid method")
	}
	if ValidPaymentMethod("check") {
		t.Error("unknown method should not be valid")
	}
}
