package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/security"
	"github.com/yoockh/jobbo/internal/utils"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// RevocationChecker reports tokens that were signed out before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
		Code:    utils.CodeUnauthorized,
		Message: msg,
	})
}

// bearerToken reads the Authorization header, falling back to the "token"
// query parameter for WebSocket upgrades from browsers.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(c.Query("token"))
}

func JWTAuth(tokens *security.TokenIssuer, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if revoked != nil {
			gone, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiError{
					Code:    utils.CodeUnavailable,
					Message: "unable to verify session",
				})
				return
			}
			if gone {
				abortUnauthorized(c, "session has ended")
				return
			}
		}

		role := claims.Role
		if role == "" {
			role = "user"
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, role)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
