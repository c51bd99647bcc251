package delivery

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewCartHandler(db *sql.DB, log *logrus.Logger) *CartHandler {
	return &CartHandler{db: db, log: log}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	cart := router.Group("/cart", authorized)
	cart.GET("", h.Get)
	cart.POST("", h.AddItem)
	cart.PATCH("", h.UpdateQuantity)
	cart.DELETE("/:productId", h.RemoveItem)
}

func (h *CartHandler) Get(c *gin.Context) {
	cart, err := store.GetCart(c.Request.Context(), h.db, PrincipalFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int   `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := store.AddCartItem(c.Request.Context(), h.db, PrincipalFrom(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", cart)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  *int  `json:"quantity" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, err := store.UpdateCartQuantity(c.Request.Context(), h.db, PrincipalFrom(c).UserID, req.ProductID, *req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated successfully", cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cart, err := store.RemoveCartItem(c.Request.Context(), h.db, PrincipalFrom(c).UserID, productID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", cart)
}
