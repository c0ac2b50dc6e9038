package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware. An expired access
// token answers with code token_expired so clients know to refresh.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, apperror.NewAppError(401, "Se requiere el encabezado Authorization"))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Abort(c, apperror.ErrInvalidToken)
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if errors.Is(err, utils.ErrTokenExpired) {
			response.Abort(c, apperror.ErrTokenExpired)
			return
		}
		if err != nil {
			response.Abort(c, apperror.ErrInvalidToken)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Set("user_permissions", claims.Permissions)

		c.Next()
	}
}

// RequirePermission creates a middleware that requires a specific permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		permissions, _ := c.Get("user_permissions")
		userPermissions, _ := permissions.([]string)
		if !slices.Contains(userPermissions, permission) {
			response.Abort(c, apperror.NewAppError(403, "No tiene permiso para realizar esta acción"))
			return
		}
		c.Next()
	}
}

// RequireRole creates a middleware that requires any of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, _ := c.Get("user_roles")
		userRolesList, _ := userRoles.([]string)
		for _, role := range userRolesList {
			if slices.Contains(roles, role) {
				c.Next()
				return
			}
		}
		response.Abort(c, apperror.ErrForbidden)
	}
}
