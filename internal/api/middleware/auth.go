package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/response"
)

const ContextUserIDKey = "user_id"

// JWTAuth 校验 Bearer 令牌，通过后把 user_id 写入上下文
func JWTAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization format")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUser 当前登录用户；未经过 JWTAuth 时返回空串
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
