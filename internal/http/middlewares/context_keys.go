package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
)

// RequestIDFrom returns the id stamped by RequestID, or the inbound header
// when the middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return c.GetHeader(requestIDHeader)
}

// abortError stops the chain with the same error body handlers produce.
func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message": message,
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": RequestIDFrom(c),
		},
	})
}
