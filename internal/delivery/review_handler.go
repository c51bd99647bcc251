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

type ReviewHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewReviewHandler(db *sql.DB, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{db: db, log: log}
}

func (h *ReviewHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	reviews := router.Group("/reviews")
	reviews.GET("", h.List)

	reviews.POST("", authorized, h.Create)
	reviews.DELETE("/:id", authorized, RequireRoles(models.RoleAdmin), h.Delete)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req struct {
		ProductID int64  `json:"product_id" binding:"required"`
		Rating    *int   `json:"rating" binding:"required,min=0,max=5"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	review, err := store.CreateReview(c.Request.Context(), h.db, PrincipalFrom(c).UserID, req.ProductID, *req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Review created successfully", review)
}

func (h *ReviewHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	result, err := store.ListReviews(c.Request.Context(), h.db, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Reviews retrieved successfully", result)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := store.DeleteReview(c.Request.Context(), h.db, id); err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Review deleted successfully", nil)
}
