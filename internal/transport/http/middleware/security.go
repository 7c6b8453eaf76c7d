package middleware

import "github.com/gin-gonic/gin"

// Security sets common HTTP security headers on every response.
// Responses may carry tokens, so nothing is cached.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
