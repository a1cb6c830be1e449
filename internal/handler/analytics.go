package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
)

// productTerms are the product names the top-products report scans for in
// medical message facts.
var productTerms = []string{
	"paracetamol",
	"amoxicillin",
	"vitamin",
	"antibiotic",
	"painkiller",
	"syrup",
	"tablet",
	"capsule",
	"injection",
	"cream",
}

type AnalyticsHandler interface {
	GetChannels(c *gin.Context)
	GetChannelActivity(c *gin.Context)
	SearchMessages(c *gin.Context)
	GetMedicalContentStats(c *gin.Context)
	GetEngagementTrends(c *gin.Context)
	GetTopProducts(c *gin.Context)
}

type analyticsHandler struct {
	warehouse repository.WarehouseRepository
	logger    *zap.Logger
}

func NewAnalyticsHandler(warehouse repository.WarehouseRepository, logger *zap.Logger) AnalyticsHandler {
	return &analyticsHandler{warehouse: warehouse, logger: logger}
}

// ChannelActivityResponse is the per-channel activity report.
type ChannelActivityResponse struct {
	Channel    models.ChannelDim          `json:"channel"`
	Daily      []repository.DailyActivity `json:"activity_trend"`
	PeriodDays int                        `json:"period_days"`
}

// GetChannels handles GET /api/channels
func (h *analyticsHandler) GetChannels(c *gin.Context) {
	channels, err := h.warehouse.ListChannels()
	if err != nil {
		h.logger.Error("Failed to list channels", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channels"})
		return
	}
	c.JSON(http.StatusOK, channels)
}

// GetChannelActivity handles GET /api/channels/:name/activity
func (h *analyticsHandler) GetChannelActivity(c *gin.Context) {
	name := c.Param("name")
	days := intQuery(c, "days", 30, 1, 365)

	channel, err := h.warehouse.GetChannel(name)
	if err != nil {
		h.logger.Error("Failed to get channel", zap.String("channel", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channel activity"})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	daily, err := h.warehouse.ChannelDailyActivity(name, daysAgo(days))
	if err != nil {
		h.logger.Error("Failed to get channel activity", zap.String("channel", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve channel activity"})
		return
	}

	c.JSON(http.StatusOK, ChannelActivityResponse{
		Channel:    *channel,
		Daily:      daily,
		PeriodDays: days,
	})
}

// SearchMessages handles GET /api/search/messages
func (h *analyticsHandler) SearchMessages(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	channel := c.Query("channel")
	limit := intQuery(c, "limit", 20, 1, 100)

	facts, err := h.warehouse.SearchMessages(query, channel, limit)
	if err != nil {
		h.logger.Error("Failed to search messages", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search messages"})
		return
	}
	c.JSON(http.StatusOK, facts)
}

// GetMedicalContentStats handles GET /api/reports/medical-content
func (h *analyticsHandler) GetMedicalContentStats(c *gin.Context) {
	days := intQuery(c, "days", 30, 1, 365)

	stats, err := h.warehouse.MedicalContentStats(daysAgo(days))
	if err != nil {
		h.logger.Error("Failed to get medical content stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve medical content statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":       stats,
		"period_days": days,
	})
}

// GetEngagementTrends handles GET /api/reports/engagement-trends
func (h *analyticsHandler) GetEngagementTrends(c *gin.Context) {
	days := intQuery(c, "days", 30, 1, 365)

	trend, err := h.warehouse.EngagementTrend(daysAgo(days))
	if err != nil {
		h.logger.Error("Failed to get engagement trends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve engagement trends"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"daily_trends": trend,
		"period_days":  days,
	})
}

// GetTopProducts handles GET /api/reports/top-products
func (h *analyticsHandler) GetTopProducts(c *gin.Context) {
	limit := intQuery(c, "limit", 10, 1, 100)
	days := intQuery(c, "days", 30, 1, 365)

	products, err := h.warehouse.TopProducts(productTerms, daysAgo(days), limit)
	if err != nil {
		h.logger.Error("Failed to get top products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func intQuery(c *gin.Context, name string, def, min, max int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func daysAgo(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}
