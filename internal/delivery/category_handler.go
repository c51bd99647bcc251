package delivery

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewCategoryHandler(db *sql.DB, log *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{db: db, log: log}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	categories := router.Group("/categories")
	categories.GET("", h.List)

	admin := categories.Group("", authorized, RequireRoles(models.RoleAdmin))
	admin.GET("/deleted", h.ListDeleted)
	admin.POST("", h.Create)
	admin.PATCH("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/restore", h.Restore)
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := store.ListCategories(c.Request.Context(), h.db, false)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) ListDeleted(c *gin.Context) {
	categories, err := store.ListCategories(c.Request.Context(), h.db, true)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Deleted categories retrieved successfully", categories)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Slug     string `json:"slug" binding:"required"`
		ParentID *int64 `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := store.CreateCategory(c.Request.Context(), h.db, req.Name, req.Slug, req.ParentID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Slug     *string `json:"slug"`
		ParentID *int64  `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := store.UpdateCategory(c.Request.Context(), h.db, id, req.Name, req.Slug, req.ParentID)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := store.SoftDeleteCategory(c.Request.Context(), h.db, id); err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) Restore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := store.RestoreCategory(c.Request.Context(), h.db, id); err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category restored successfully", nil)
}
