package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-ai-service/internal/pkg/common"
)

// APIKeyAuth enforces the X-API-Key shared secret. An empty configured key
// disables the check, which keeps local development friction-free.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		supplied := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(apiKey)) != 1 {
			common.LogWarn("rejected request with invalid API key",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": common.ErrUnauthorized.Message,
				"code":  common.ErrUnauthorized.Code,
			})
			return
		}

		c.Next()
	}
}
