package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"service-admin/internal/domain/admin"
	"service-admin/internal/middleware"
	"service-admin/internal/pkg/response"
	authsvc "service-admin/internal/service/auth"
)

type Handler struct {
	auth   *authsvc.Service
	logger *zap.Logger
}

func NewHandler(authService *authsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{auth: authService, logger: logger}
}

func (h *Handler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err))
		response.FromError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

func (h *Handler) Logout(c *gin.Context) {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		response.Unauthorized(c, "missing access token")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), tokenStr); err != nil {
		response.FromError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

func (h *Handler) Me(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	result, err := h.auth.Me(c.Request.Context(), adminID)
	if err != nil {
		response.FromError(c, err, "admin not found")
		return
	}

	response.Success(c, http.StatusOK, "admin retrieved", result)
}

// CreateAdmin is restricted to super admins by the router.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req admin.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.auth.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create admin")
		return
	}

	response.Success(c, http.StatusCreated, "admin created", result)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
