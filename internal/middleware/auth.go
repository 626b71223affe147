package middleware

import (
	"strings"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// AuthMiddleware resolves the bearer token to the caller's id and role.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RoleAuthMiddleware admits only the listed roles. It must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}

func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	role, ok := c.Get(ctxUserRole)
	if !ok {
		return "", false
	}
	r, ok := role.(models.Role)
	return r, ok
}
