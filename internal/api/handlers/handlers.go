// internal/api/handlers/handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jaysongor/ducklens-backend/internal/domain"
	"github.com/jaysongor/ducklens-backend/internal/service"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
)

// Handler holds the services the API surfaces.
type Handler struct {
	insights *service.InsightsService
	refresh  *service.RefreshService
}

func New(insights *service.InsightsService, refresh *service.RefreshService) *Handler {
	return &Handler{insights: insights, refresh: refresh}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) DataQuality(c *gin.Context) {
	payload, err := h.insights.DataQuality(c.Request.Context())
	h.respond(c, payload, err)
}

func (h *Handler) PromoKPIs(c *gin.Context) {
	payload, err := h.insights.PromoKPIs(c.Request.Context())
	h.respond(c, payload, err)
}

func (h *Handler) PromoSummary(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	payload, err := h.insights.PromoSummary(c.Request.Context(), limit)
	h.respond(c, payload, err)
}

func (h *Handler) StorePriceIndex(c *gin.Context) {
	filter := warehouse.PriceIndexFilter{
		StoreName:     c.Query("store"),
		SubDepartment: c.Query("sub_department"),
		Positioning:   c.Query("positioning"),
		Limit:         queryInt(c, "limit", 0),
	}
	payload, err := h.insights.StorePriceIndex(c.Request.Context(), filter)
	h.respond(c, payload, err)
}

func (h *Handler) CategoryPriceIndex(c *gin.Context) {
	payload, err := h.insights.CategoryPriceIndex(c.Request.Context())
	h.respond(c, payload, err)
}

func (h *Handler) StoreReliability(c *gin.Context) {
	payload, err := h.insights.Reliability(c.Request.Context(), domain.EntityStore)
	h.respond(c, payload, err)
}

func (h *Handler) SupplierReliability(c *gin.Context) {
	payload, err := h.insights.Reliability(c.Request.Context(), domain.EntitySupplier)
	h.respond(c, payload, err)
}

func (h *Handler) OverallReliability(c *gin.Context) {
	payload, err := h.insights.OverallReliability(c.Request.Context())
	h.respond(c, payload, err)
}

// Refresh triggers the full recompute. 409 when one is already running.
func (h *Handler) Refresh(c *gin.Context) {
	result, err := h.refresh.Refresh(c.Request.Context())
	if errors.Is(err, service.ErrRefreshInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("refresh request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"raw_records":         result.RawRecords,
		"fact_records":        result.FactRecords,
		"exact_duplicates":    result.ExactDuplicates,
		"business_duplicates": result.BusinessDuplicates,
		"promo_records":       result.PromoRecords,
		"duration_ms":         result.Duration.Milliseconds(),
	})
}

func (h *Handler) respond(c *gin.Context, payload json.RawMessage, err error) {
	if err != nil {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("summary query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
