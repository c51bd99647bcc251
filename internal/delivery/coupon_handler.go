package delivery

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CouponHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewCouponHandler(db *sql.DB, log *logrus.Logger) *CouponHandler {
	return &CouponHandler{db: db, log: log}
}

func (h *CouponHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	coupons := router.Group("/coupons", authorized)
	coupons.POST("/validate", h.Validate)

	admin := coupons.Group("", RequireRoles(models.RoleAdmin))
	admin.POST("", h.Create)
	admin.GET("", h.List)
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req struct {
		DiscountType string `json:"discount_type" binding:"required,oneof=percentage fixed"`
		Value        string `json:"value" binding:"required"`
		UsageLimit   int    `json:"usage_limit" binding:"required,min=1"`
		ValidFrom    string `json:"valid_from" binding:"required"`
		ValidTo      string `json:"valid_to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil || !value.IsPositive() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid discount value")
		return
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid valid_from timestamp")
		return
	}
	validTo, err := time.Parse(time.RFC3339, req.ValidTo)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid valid_to timestamp")
		return
	}
	if validTo.Before(validFrom) {
		ErrorResponse(c, http.StatusBadRequest, "valid_to must not be before valid_from")
		return
	}

	coupon, err := store.CreateCoupon(c.Request.Context(), h.db, req.DiscountType, value, req.UsageLimit, validFrom, validTo)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Coupon created successfully", coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	result, err := store.ListCoupons(c.Request.Context(), h.db, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Coupons retrieved successfully", result)
}

func (h *CouponHandler) Validate(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	coupon, err := store.GetCouponByCode(c.Request.Context(), h.db, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	if !coupon.Valid(time.Now()) {
		ErrorResponse(c, http.StatusBadRequest, "Coupon is expired or exhausted")
		return
	}
	SuccessResponse(c, http.StatusOK, "Coupon is valid", coupon)
}
