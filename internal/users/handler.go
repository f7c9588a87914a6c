package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/shared/server/middleware"
	"sentimentiq-backend/internal/shared/server/respond"
	"sentimentiq-backend/internal/tier"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if middleware.IsGuest(c) {
		limits := tier.LimitsFor(tier.Guest)
		respond.OK(c, gin.H{
			"id":     middleware.UserIDFromContext(c),
			"guest":  true,
			"tier":   string(tier.Guest),
			"limits": limits,
		})
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"picture":  user.Picture,
		"guest":    false,
		"tier":     string(user.Tier),
		"tierName": tier.DisplayName(user.Tier),
		"limits":   tier.LimitsFor(user.Tier),
	})
}
