package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ==================== 不透明令牌认证 ====================

// TokenResolver 把 "Authorization: Token {key}" 里的 key 解析成用户
type TokenResolver interface {
	ResolveToken(ctx context.Context, key string) (userID int64, email string, err error)
}

// UserAuth 同时接受 Bearer {jwt} 和 Token {key}
func UserAuth(tokens TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, credential, _ := strings.Cut(c.GetHeader("Authorization"), " ")
		if scheme != "Token" {
			claims, msg := bearerClaims(c)
			if claims == nil {
				abortUnauthorized(c, msg)
				return
			}
			setClaims(c, claims)
			c.Next()
			return
		}

		if credential == "" {
			abortUnauthorized(c, "认证格式错误，应为 Token {key}")
			return
		}
		userID, email, err := tokens.ResolveToken(c.Request.Context(), credential)
		if err != nil {
			abortUnauthorized(c, "Token 无效")
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": msg,
	})
	c.Abort()
}
