package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sentimentiq-backend/internal/analysis"
	"sentimentiq-backend/internal/shared/metrics"
	"sentimentiq-backend/internal/shared/server/respond"
	"sentimentiq-backend/internal/shared/telemetry"
	"sentimentiq-backend/internal/tracking"
	"sentimentiq-backend/internal/users"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves the admin dashboard API.
type Handler struct {
	Users        *users.Service
	AnalysisRepo analysis.Repo
	Tracking     *tracking.Service
	Log          *telemetry.Buffer
}

func NewHandler(usersSvc *users.Service, analysisRepo analysis.Repo, trackingSvc *tracking.Service, log *telemetry.Buffer) *Handler {
	return &Handler{
		Users:        usersSvc,
		AnalysisRepo: analysisRepo,
		Tracking:     trackingSvc,
		Log:          log,
	}
}

// RegisterRoutes attaches admin routes. The group is expected to carry
// RequireAdmin already.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/overview", h.overview)
	rg.GET("/logs", h.logs)
	rg.GET("/logs/stream", h.streamLogs)
	rg.GET("/users", h.listUsers)
	rg.PUT("/users/:id/tier", h.setTier)
	rg.GET("/visitors/daily", h.dailyVisitors)
}

func (h *Handler) overview(c *gin.Context) {
	ctx := c.Request.Context()

	userCount, err := h.Users.Count(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count users", nil)
		return
	}
	analysisCount, err := h.AnalysisRepo.CountAll(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count analyses", nil)
		return
	}
	visitorCount := 0
	distinctVisitors := 0
	if h.Tracking != nil {
		if visitorCount, err = h.Tracking.TotalEvents(ctx); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count visitors", nil)
			return
		}
		if distinctVisitors, err = h.Tracking.DistinctVisitors(ctx); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count visitors", nil)
			return
		}
	}

	respond.OK(c, gin.H{
		"users":            userCount,
		"analyses":         analysisCount,
		"visitorEvents":    visitorCount,
		"distinctVisitors": distinctVisitors,
		"providerMetrics":  metrics.Counters(),
	})
}

func (h *Handler) logs(c *gin.Context) {
	if h.Log == nil {
		respond.OK(c, gin.H{"items": []telemetry.Entry{}})
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	respond.OK(c, gin.H{"items": h.Log.Recent(limit)})
}

// streamLogs pushes new log entries to the dashboard over a WebSocket until
// the client goes away.
func (h *Handler) streamLogs(c *gin.Context) {
	if h.Log == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "log buffer not configured", nil)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	entries, cancel := h.Log.Subscribe()
	defer cancel()

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	list, err := h.Users.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}
	respond.OK(c, gin.H{"items": list})
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) setTier(c *gin.Context) {
	userID := c.Param("id")
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tier == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "tier is required", nil)
		return
	}
	updated, err := h.Users.SetTier(c.Request.Context(), userID, req.Tier)
	if err != nil {
		if errors.Is(err, users.ErrInvalidTier) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown tier", gin.H{"tier": req.Tier})
			return
		}
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update tier", nil)
		return
	}
	respond.OK(c, gin.H{"id": userID, "tier": string(updated)})
}

func (h *Handler) dailyVisitors(c *gin.Context) {
	if h.Tracking == nil {
		respond.OK(c, gin.H{"items": []tracking.DayCount{}})
		return
	}
	days := 7
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	counts, err := h.Tracking.DailyCounts(c.Request.Context(), days)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load visitor counts", nil)
		return
	}
	respond.OK(c, gin.H{"items": counts})
}
