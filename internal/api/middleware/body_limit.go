package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classsync/pkg/response"
)

// BodyLimit 请求体大小限制
// 超限时由绑定失败的 Handler 先行响应；这里只处理未写响应的情况
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(e.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "送信データが大きすぎます")
				return
			}
		}
	}
}
