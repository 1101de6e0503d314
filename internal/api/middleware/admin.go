package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/tieba/pkg/response"
)

// AdminOnly 只放行白名单内的用户，需挂在 JWTAuth 之后
func AdminOnly(userIDs []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[CurrentUser(c)]; !ok {
			c.Abort()
			response.Forbidden(c, "admin only")
			return
		}
		c.Next()
	}
}
