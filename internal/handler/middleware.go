package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/response"
)

// AuthRequired validates the bearer token and stores its claims on the
// context. When roles are given, the token's role must be one of them.
func AuthRequired(auth service.AuthService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		if len(roles) > 0 {
			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				response.Error(c, 403, "FORBIDDEN", "insufficient permissions", "")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}
