package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
)

// SessionCookie carries the token for browser clients.
const SessionCookie = "session_token"

// Context keys set by AuthMiddleware.
const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
	ContextClaims    = "claims"
)

// tokenFromRequest looks at the Authorization header, then the session cookie, then
// the token query parameter used by websocket clients.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

func AuthMiddleware(store utils.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authentication required"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		if store != nil {
			revoked, err := store.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				utils.ErrorLogger.Printf("Revocation lookup failed: %v", err)
				utils.RespondError(c, http.StatusInternalServerError, errors.New("could not verify session"))
				c.Abort()
				return
			}
			if revoked {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("session has been logged out"))
				c.Abort()
				return
			}
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// OptionalAuth decodes a token when one is present and never aborts. Public pages use
// it to tell who is looking.
func OptionalAuth(store utils.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		if store != nil {
			if revoked, err := store.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
				c.Next()
				return
			}
		}
		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextRole, models.Role(claims.Role))
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// CurrentAccount returns what AuthMiddleware stored.
func CurrentAccount(c *gin.Context) (uint, models.Role, bool) {
	id, ok := c.Get(ContextAccountID)
	if !ok {
		return 0, "", false
	}
	role, _ := c.Get(ContextRole)
	accountID, _ := id.(uint)
	r, _ := role.(models.Role)
	return accountID, r, accountID != 0
}
