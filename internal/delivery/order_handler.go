package delivery

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/MohamedWael200/APi-eCommerce/internal/checkout"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	db  *sql.DB
	svc *checkout.Service
	log *logrus.Logger
}

func NewOrderHandler(db *sql.DB, svc *checkout.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{db: db, svc: svc, log: log}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	orders := router.Group("/orders")

	// Payment provider redirects arrive without our bearer token.
	orders.GET("/paypal/success", h.PayPalSuccess)
	orders.GET("/paypal/cancel", h.PayPalCancel)

	orders.Use(authorized)
	orders.POST("/create", h.Create)
	orders.GET("", h.List)
	orders.GET("/admin/all", RequireRoles(models.RoleAdmin), h.AdminAll)
	orders.GET("/vendor/my-orders", RequireRoles(models.RoleVendor), h.VendorOrders)
	orders.GET("/:id", h.Get)
	orders.PATCH("/:id/status", RequireRoles(models.RoleAdmin, models.RoleVendor), h.UpdateStatus)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req struct {
		ShippingAddress string `json:"shipping_address"`
		PaymentMethod   string `json:"payment_method"`
		CouponCode      string `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.CreateOrder(c.Request.Context(), PrincipalFrom(c), checkout.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		fail(c, err)
		return
	}

	message := "Order created successfully"
	if result.PaymentURL != "" {
		message = "Order created. Complete the payment to confirm it."
	}
	SuccessResponse(c, http.StatusCreated, message, result)
}

// scope builds the order filter the caller is allowed to see: customers
// their own orders, vendors orders carrying their products, admins everything.
func (h *OrderHandler) scope(c *gin.Context) store.OrderFilter {
	principal := PrincipalFrom(c)
	var filter store.OrderFilter
	switch {
	case principal.IsAdmin():
	case principal.IsVendor():
		filter.VendorID = &principal.UserID
	default:
		filter.CustomerID = &principal.UserID
	}
	return filter
}

func (h *OrderHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	filter := h.scope(c)
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !models.ValidOrderStatus(s) {
			ErrorResponse(c, http.StatusBadRequest, "Invalid order status")
			return
		}
		filter.Status = &s
	}

	result, err := store.ListOrders(c.Request.Context(), h.db, filter, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", result)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := store.GetOrderScoped(c.Request.Context(), h.db, id, h.scope(c))
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), PrincipalFrom(c), id, models.OrderStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", order)
}

func (h *OrderHandler) AdminAll(c *gin.Context) {
	page, limit := pageQuery(c)

	result, err := store.ListOrders(c.Request.Context(), h.db, store.OrderFilter{}, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", result)
}

func (h *OrderHandler) VendorOrders(c *gin.Context) {
	orders, err := store.ListVendorOrders(c.Request.Context(), h.db, PrincipalFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) PayPalSuccess(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Query("orderId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID")
		return
	}
	paymentID := c.Query("paymentId")
	payerID := c.Query("PayerID")
	if paymentID == "" || payerID == "" {
		ErrorResponse(c, http.StatusBadRequest, "Missing payment parameters")
		return
	}

	order, err := h.svc.FinalizePayment(c.Request.Context(), orderID, paymentID, payerID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment completed successfully", order)
}

func (h *OrderHandler) PayPalCancel(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Query("orderId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := h.svc.CancelPayment(c.Request.Context(), orderID); err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Payment canceled and order removed", nil)
}
