package handlers

import (
	"net/http"
	"strings"

	"voiceoflaw-backend/auth"
	"voiceoflaw-backend/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token and stores the caller's identity
// in the request context
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Authorization header must be a bearer token")
			c.Abort()
			return
		}

		identity, err := tokens.Verify(parts[1])
		if err != nil {
			code := "INVALID_TOKEN"
			if err == auth.ErrExpiredToken {
				code = "TOKEN_EXPIRED"
			}
			respondError(c, http.StatusUnauthorized, code, err.Error())
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)
		if identity == nil || identity.Role != models.RoleAdmin {
			respondError(c, http.StatusForbidden, "ADMIN_ONLY", "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// identityFrom returns the authenticated identity stored by AuthMiddleware
func identityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}
