package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"service-admin/internal/domain/admin"
	"service-admin/internal/pkg/response"
	"service-admin/internal/service/auth"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Auth validates the bearer token and its backing session.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Set("admin_role", claims.Role)
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}

// RequireSuperAdmin must run after Auth.
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("admin_role")
		if role != string(admin.RoleSuperAdmin) {
			response.Forbidden(c, "super admin access required")
			return
		}
		c.Next()
	}
}

// MustGetAdminID returns the authenticated admin's ID. Routes behind Auth
// always carry it.
func MustGetAdminID(c *gin.Context) int64 {
	id, _ := c.Get("admin_id")
	adminID, _ := id.(int64)
	return adminID
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser.
	return c.Query("token")
}
