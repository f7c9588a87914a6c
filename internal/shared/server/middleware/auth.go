package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/shared/auth"
	"sentimentiq-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"
)

// publicPrefixes are reachable without any identity: the login flow and the
// fire-and-forget visitor beacon.
var publicPrefixes = []string{
	"/api/v1/auth/google/",
	"/api/v1/track",
	"/api/v1/health",
	"/metrics",
}

// Auth validates JWTs or guest headers and stores identity in context.
// Guests carry an X-Guest-Id header minted by the UI.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Sub)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			if claims.Picture != "" {
				c.Set(userPictureKey, claims.Picture)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// UserIDFromContext returns the authenticated or guest user ID.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UserEmailFromContext returns the authenticated email, empty for guests.
func UserEmailFromContext(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// UserNameFromContext returns the display name, empty for guests.
func UserNameFromContext(c *gin.Context) string {
	return c.GetString(userNameKey)
}

// UserPictureFromContext returns the avatar URL, empty for guests.
func UserPictureFromContext(c *gin.Context) string {
	return c.GetString(userPictureKey)
}

// IsGuest reports whether the current identity is an unauthenticated guest.
func IsGuest(c *gin.Context) bool {
	if raw, ok := c.Get(isGuestKey); ok {
		if guest, ok := raw.(bool); ok {
			return guest
		}
	}
	return true
}
