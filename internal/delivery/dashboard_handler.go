package delivery

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewDashboardHandler(db *sql.DB, log *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, log: log}
}

func (h *DashboardHandler) RegisterRoutes(router gin.IRouter, authorized gin.HandlerFunc) {
	dashboard := router.Group("/dashboard", authorized)
	dashboard.GET("/admin", RequireRoles(models.RoleAdmin), h.Admin)
	dashboard.GET("/vendor", RequireRoles(models.RoleVendor), h.Vendor)
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	stats, err := store.GetAdminDashboard(c.Request.Context(), h.db)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", stats)
}

func (h *DashboardHandler) Vendor(c *gin.Context) {
	stats, err := store.GetVendorDashboard(c.Request.Context(), h.db, PrincipalFrom(c).UserID, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Dashboard retrieved successfully", stats)
}
