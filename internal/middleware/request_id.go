package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID 请求 ID 在 gin.Context 中的 key
const ContextKeyRequestID = "request_id"

// RequestID 透传或生成请求 ID，并把带 request_id 的 logger 放进 request context
// 下游通过 zerolog.Ctx(ctx) 取到同一个 logger
func RequestID(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		l := base.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()
	}
}

// GetRequestID 从 Context 获取请求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
