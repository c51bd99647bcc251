package delivery

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewProductHandler(db *sql.DB, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{db: db, log: log}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	products := router.Group("/products")
	products.GET("", h.List)

	products.Use(authorized)
	products.GET("/archived", RequireRoles(models.RoleAdmin, models.RoleVendor), h.ListArchived)
	products.GET("/:id", h.Get)
	products.POST("", RequireRoles(models.RoleAdmin, models.RoleVendor), h.Create)
	products.PATCH("/:id", RequireRoles(models.RoleAdmin, models.RoleVendor), h.Update)
	products.DELETE("/:id", RequireRoles(models.RoleAdmin, models.RoleVendor), h.Archive)
}

func (h *ProductHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	result, err := store.ListProducts(c.Request.Context(), h.db, c.Query("search"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", result)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.GetProduct(c.Request.Context(), h.db, id)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Price       string   `json:"price" binding:"required"`
		Stock       int      `json:"stock" binding:"min=0"`
		CategoryID  int64    `json:"category_id" binding:"required"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid price")
		return
	}

	product, err := store.CreateProduct(c.Request.Context(), h.db, store.CreateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		VendorID:    PrincipalFrom(c).UserID,
		Images:      req.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *string  `json:"price"`
		Stock       *int     `json:"stock"`
		CategoryID  *int64   `json:"category_id"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	update := store.UpdateProductRequest{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			ErrorResponse(c, http.StatusBadRequest, "Invalid price")
			return
		}
		update.Price = &price
	}

	product, err := store.UpdateProduct(c.Request.Context(), h.db, id, h.ownerScope(c), update)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) Archive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.ArchiveProduct(c.Request.Context(), h.db, id, h.ownerScope(c)); err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product archived successfully", nil)
}

func (h *ProductHandler) ListArchived(c *gin.Context) {
	products, err := store.ListArchivedProducts(c.Request.Context(), h.db, h.ownerScope(c))
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Archived products retrieved successfully", products)
}

// ownerScope returns the vendor ID products must belong to, or zero for
// admins who may touch any product.
func (h *ProductHandler) ownerScope(c *gin.Context) int64 {
	principal := PrincipalFrom(c)
	if principal.IsAdmin() {
		return 0
	}
	return principal.UserID
}
