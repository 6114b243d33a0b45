package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/service"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) parseFilter(c *gin.Context) domain.QueryFilter {
	var filter domain.QueryFilter

	if raw := strings.TrimSpace(c.Query("store_id")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.StoreID = id
		}
	}

	if raw := strings.TrimSpace(c.Query("date_start")); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			filter.From = t
		}
	}

	if raw := strings.TrimSpace(c.Query("date_end")); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			filter.To = t
		}
	}

	return filter
}

// GetStores lists the selectable stores together with the sale date bounds
// for the requested store (all stores by default), so the client can preset
// its date pickers.
func (h *AnalyticsHandler) GetStores(c *gin.Context) {
	filter := h.parseFilter(c)

	stores, err := h.service.Stores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stores", "details": err.Error()})
		return
	}

	minDate, maxDate, err := h.service.SaleDateBounds(c.Request.Context(), filter.StoreID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sale date bounds", "details": err.Error()})
		return
	}

	payload := gin.H{"stores": stores, "date_start": nil, "date_end": nil}
	if !minDate.IsZero() {
		payload["date_start"] = minDate.Format(dateLayout)
		payload["date_end"] = maxDate.Format(dateLayout)
	}

	c.JSON(http.StatusOK, payload)
}

func (h *AnalyticsHandler) GetSales(c *gin.Context) {
	filter := h.parseFilter(c)
	sales, err := h.service.Sales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sales", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales": sales,
		"total": len(sales),
	})
}

func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	filter := h.parseFilter(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}

	products, err := h.service.TopParts(c.Request.Context(), filter, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top products", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *AnalyticsHandler) GetBrandSales(c *gin.Context) {
	filter := h.parseFilter(c)
	brands, err := h.service.BrandSales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch brand sales", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

func (h *AnalyticsHandler) GetRecommendations(c *gin.Context) {
	filter := h.parseFilter(c)
	report, err := h.service.Recommendations(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build recommendations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	filter := h.parseFilter(c)
	result, err := h.service.Forecast(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no sales history for the requested window"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build forecast", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
