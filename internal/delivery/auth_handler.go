package delivery

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MohamedWael200/APi-eCommerce/internal/auth"
	"github.com/MohamedWael200/APi-eCommerce/internal/config"
	"github.com/MohamedWael200/APi-eCommerce/internal/database"
	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	db     *sql.DB
	cfg    config.AuthConfig
	mailer auth.Mailer
	log    *logrus.Logger
}

func NewAuthHandler(db *sql.DB, cfg config.AuthConfig, mailer auth.Mailer, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mailer: mailer, log: log}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.POST("/verify-otp", h.VerifyOTP)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Password     string `json:"password" binding:"required,min=8"`
		Role         string `json:"role"`
		ProfileImage string `json:"profile_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleVendor && role != models.RoleAdmin {
		ErrorResponse(c, http.StatusBadRequest, "Invalid role")
		return
	}

	// Vendor and admin accounts are provisioned by an admin; the very first
	// admin bootstraps itself.
	if role != models.RoleCustomer {
		hasAdmin, err := store.HasAdmin(ctx, h.db)
		if err != nil {
			fail(c, err)
			return
		}
		if role == models.RoleVendor || hasAdmin {
			if !h.callerIsAdmin(c) {
				ErrorResponse(c, http.StatusForbidden, "Only admins can register this role")
				return
			}
		}
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := store.CreateUser(ctx, h.db, req.Name, req.Email, passwordHash, role, req.ProfileImage)
	if err != nil {
		fail(c, err)
		return
	}

	code := auth.GenerateOTP()
	if err := store.CreateOTP(ctx, h.db, user.Email, code, time.Now().Add(h.cfg.OTPTTL)); err != nil {
		fail(c, err)
		return
	}

	if err := h.mailer.SendOTP(user.Email, user.Name, code); err != nil {
		h.log.WithError(err).WithField("email", user.Email).Error("failed to send verification email")
	}

	SuccessResponse(c, http.StatusCreated, "User registered successfully. Check your email for the verification code.", user)
}

func (h *AuthHandler) callerIsAdmin(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return false
	}
	principal, err := auth.ParseToken(h.cfg.JWTSecret, parts[1])
	return err == nil && principal.IsAdmin()
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := store.GetUserByEmail(c.Request.Context(), h.db, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		fail(c, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsVerified {
		ErrorResponse(c, http.StatusForbidden, "Account is not verified")
		return
	}
	if user.Status == models.UserStatusBanned {
		ErrorResponse(c, http.StatusForbidden, "Account is banned")
		return
	}

	token, err := auth.IssueToken(h.cfg.JWTSecret, user, h.cfg.TokenTTL)
	if err != nil {
		fail(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", gin.H{"token": token, "user": user})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	if err := store.ConsumeOTP(ctx, h.db, req.Email, req.Code); err != nil {
		fail(c, err)
		return
	}

	if err := store.MarkUserVerified(ctx, h.db, req.Email); err != nil {
		fail(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Account verified successfully", nil)
}
