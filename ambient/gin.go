package ambient

import (
	"github.com/gin-gonic/gin"
)

// GinMiddleware 从请求头读取操作人和租户，写入 c.Request 的 context
func GinMiddleware(keys Keys) gin.HandlerFunc {
	keys = keys.withDefaults()
	return func(c *gin.Context) {
		p := keys.extract(c.GetHeader)
		if !p.IsZero() {
			c.Request = c.Request.WithContext(With(c.Request.Context(), p))
		}
		c.Next()
	}
}
