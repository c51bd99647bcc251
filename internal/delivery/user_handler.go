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

type UserHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewUserHandler(db *sql.DB, log *logrus.Logger) *UserHandler {
	return &UserHandler{db: db, log: log}
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	users := router.Group("/users", authorized, RequireRoles(models.RoleAdmin))
	users.GET("", h.List)
	users.PATCH("/:id/ban", h.Ban)
	users.PATCH("/:id/activate", h.Activate)
	users.PATCH("/:id/to-vendor", h.PromoteToVendor)
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)

	result, err := store.ListUsers(c.Request.Context(), h.db, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", result)
}

func (h *UserHandler) Ban(c *gin.Context) {
	h.setStatus(c, models.UserStatusBanned, "User banned successfully")
}

func (h *UserHandler) Activate(c *gin.Context) {
	h.setStatus(c, models.UserStatusActive, "User activated successfully")
}

func (h *UserHandler) setStatus(c *gin.Context, status string, message string) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if id == PrincipalFrom(c).UserID {
		ErrorResponse(c, http.StatusBadRequest, "Cannot change your own account status")
		return
	}

	user, err := store.SetUserStatus(c.Request.Context(), h.db, id, status)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, message, user)
}

func (h *UserHandler) PromoteToVendor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := store.SetUserRole(c.Request.Context(), h.db, id, models.RoleVendor)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User promoted to vendor", user)
}
