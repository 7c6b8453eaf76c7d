package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"

	// AccountIDKey is the gin context key holding the authenticated account.
	AccountIDKey = "accountID"

	accessTokenCookie = "token"
)

// Auth validates the access token and sets "accountID" in the gin context.
// The token is read from the access cookie, falling back to a Bearer header.
func Auth(issuer *token.Issuer, key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerOrCookie(c)
		if rawToken == "" {
			unauthorized(c)
			return
		}

		claims, err := issuer.Verify(rawToken, key)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(AccountIDKey, claims.Subject)
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if v, err := c.Cookie(accessTokenCookie); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
}
