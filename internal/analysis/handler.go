package analysis

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/extract"
	"sentimentiq-backend/internal/feature"
	"sentimentiq-backend/internal/provider"
	"sentimentiq-backend/internal/quota"
	"sentimentiq-backend/internal/shared/server/middleware"
	"sentimentiq-backend/internal/shared/server/respond"
	"sentimentiq-backend/internal/shared/util"
	"sentimentiq-backend/internal/tier"
)

// maxUploadBytes bounds the accepted document upload size.
const maxUploadBytes = 10 << 20

// TierResolver maps an authenticated user to their stored tier.
type TierResolver interface {
	TierFor(c *gin.Context) tier.Tier
}

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc   *Service
	Tiers TierResolver
	Quota *quota.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, tiers TierResolver, quotaSvc *quota.Service) *Handler {
	return &Handler{Svc: svc, Tiers: tiers, Quota: quotaSvc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyzeComprehensive)
	rg.POST("/analyze/document", h.analyzeDocument)
	rg.POST("/analyze/sentiment", h.singleFeature(feature.Sentiment))
	rg.POST("/analyze/keyphrases", h.singleFeature(feature.KeyPhrases))
	rg.POST("/analyze/entities", h.singleFeature(feature.Entities))
	rg.POST("/analyze/summary", h.singleFeature(feature.Summary))
	rg.POST("/analyze/language", h.singleFeature(feature.Language))
	rg.GET("/history", h.listHistory)
	rg.DELETE("/history/:id", h.deleteHistory)
	rg.DELETE("/history", h.clearHistory)
	rg.GET("/usage", h.getUsage)
}

type analyzeRequest struct {
	Text     string   `json:"text"`
	Features []string `json:"features"`
}

func (h *Handler) callerTier(c *gin.Context) tier.Tier {
	if middleware.IsGuest(c) || h.Tiers == nil {
		return tier.Guest
	}
	return h.Tiers.TierFor(c)
}

func (h *Handler) analyzeComprehensive(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.runComprehensive(c, req.Text, req.Features)
}

func (h *Handler) runComprehensive(c *gin.Context, text string, features []string) {
	if len(features) > 0 {
		c.Set("analysisFeatures", features)
	}
	userID := middleware.UserIDFromContext(c)
	t := h.callerTier(c)

	result, err := h.Svc.Comprehensive(c.Request.Context(), userID, t, text, features)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) singleFeature(k feature.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		c.Set("analysisFeatures", []string{string(k)})
		userID := middleware.UserIDFromContext(c)
		t := h.callerTier(c)

		payload, err := h.Svc.Single(c.Request.Context(), userID, t, k, req.Text)
		if err != nil {
			writeAnalysisError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
	}
}

func (h *Handler) analyzeDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	text, err := extract.Text(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileName)
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from document", nil)
		return
	}

	var features []string
	if raw := c.PostForm("features"); raw != "" {
		features = splitCSV(raw)
	}
	h.runComprehensive(c, text, features)
}

func (h *Handler) listHistory(c *gin.Context) {
	userID, ok := h.requireHistoryAccess(c)
	if !ok {
		return
	}

	limit := 20
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

	records, err := h.Svc.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list history", nil)
		return
	}
	respond.OK(c, gin.H{"items": records})
}

func (h *Handler) deleteHistory(c *gin.Context) {
	userID, ok := h.requireHistoryAccess(c)
	if !ok {
		return
	}
	recordID := c.Param("id")
	if recordID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "record id is required", nil)
		return
	}
	if err := h.Svc.DeleteRecord(c.Request.Context(), userID, recordID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "history record not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete record", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearHistory(c *gin.Context) {
	userID, ok := h.requireHistoryAccess(c)
	if !ok {
		return
	}
	deleted, err := h.Svc.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear history", nil)
		return
	}
	respond.OK(c, gin.H{"deleted": deleted})
}

func (h *Handler) getUsage(c *gin.Context) {
	if h.Quota == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "usage tracking is not configured", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	t := h.callerTier(c)
	u, err := h.Quota.Get(c.Request.Context(), userID, t)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load usage", nil)
		return
	}
	respond.OK(c, u)
}

// requireHistoryAccess rejects guests and tiers without history.
func (h *Handler) requireHistoryAccess(c *gin.Context) (string, bool) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return "", false
	}
	t := h.callerTier(c)
	if !tier.LimitsFor(t).HasHistory {
		respond.Error(c, http.StatusForbidden, "tier_forbidden", "Your tier does not include analysis history", nil)
		return "", false
	}
	return middleware.UserIDFromContext(c), true
}

func writeAnalysisError(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		respond.Error(c, http.StatusBadRequest, "validation_error", ve.Msg, nil)
		return
	}
	var pe *PermissionError
	if errors.As(err, &pe) {
		respond.Error(c, http.StatusForbidden, "tier_forbidden", pe.Error(), gin.H{
			"feature": string(pe.Kind),
			"tier":    string(pe.Tier),
		})
		return
	}
	switch {
	case errors.Is(err, quota.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your analysis limit for this week.", nil)
	case errors.Is(err, provider.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "provider_unavailable", "Analysis provider is not configured", nil)
	case errors.Is(err, provider.ErrUnsupportedKind):
		respond.Error(c, http.StatusServiceUnavailable, "provider_unavailable", "Analysis provider cannot serve this feature", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "provider_error", "Analysis provider request failed", nil)
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
