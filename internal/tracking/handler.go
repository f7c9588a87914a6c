package tracking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/track", h.track)
}

type trackRequest struct {
	Event    string `json:"event"`
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

func (h *Handler) track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.Svc.Record(c.Request.Context(), c.ClientIP(), req.Event, req.Path, req.Referrer, c.Request.UserAgent())
	c.Status(http.StatusAccepted)
}
