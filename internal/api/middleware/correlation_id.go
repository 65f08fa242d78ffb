package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderCorrelationID 同时用于请求与响应，异步导出的通知也带上它。
const HeaderCorrelationID = "X-Correlation-ID"

const (
	correlationIDKey    = "correlationID"
	maxCorrelationIDLen = 64
)

// CorrelationIDMiddleware 沿用客户端传入的 Correlation ID，缺失或不合法时生成新的。
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if !validCorrelationID(id) {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

// 只接受不含空白的可打印 ASCII。
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetCorrelationID 从上下文中取出 Correlation ID。
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}
