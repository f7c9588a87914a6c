package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/shared/server/middleware"
	"sentimentiq-backend/internal/shared/server/respond"
)

// RequireAdmin gates a route group to the configured admin email list.
func RequireAdmin(adminEmails []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = true
		}
	}
	return func(c *gin.Context) {
		if middleware.IsGuest(c) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		email := strings.ToLower(strings.TrimSpace(middleware.UserEmailFromContext(c)))
		if email == "" || !allowed[email] {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		c.Next()
	}
}
