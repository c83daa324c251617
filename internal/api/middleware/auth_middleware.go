package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careernavigator/internal/auth"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验访问令牌并将 userID / profileID 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("profileID", claims.ProfileID)
		c.Next()
	}
}

// ProfileIDFromContext 取出认证中间件注入的档案 ID。
func ProfileIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get("profileID")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
